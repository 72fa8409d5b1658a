package fixtures

import (
	"slices"

	"github.com/terraskye/fmodel"
)

// CreateShipment is the command the shipment saga issues for new orders.
type CreateShipment struct {
	ShipmentID string
	OrderID    uint32
	Items      []string
}

func (c CreateShipment) Identifier() string { return c.ShipmentID }

// ShipmentSaga reacts to OrderCreated with a CreateShipment command.
func ShipmentSaga() fmodel.Saga[OrderEvent, CreateShipment] {
	return fmodel.Saga[OrderEvent, CreateShipment]{
		React: func(event OrderEvent) []CreateShipment {
			created, ok := event.(OrderCreated)
			if !ok {
				return nil
			}
			return []CreateShipment{{
				ShipmentID: "shipment-" + created.Identifier(),
				OrderID:    created.OrderID,
				Items:      slices.Clone(created.Items),
			}}
		},
	}
}

// NotifyCustomer is issued by the notification saga for every order change.
type NotifyCustomer struct {
	OrderID uint32
	Reason  string
}

func NotificationSaga() fmodel.Saga[OrderEvent, NotifyCustomer] {
	return fmodel.Saga[OrderEvent, NotifyCustomer]{
		React: func(event OrderEvent) []NotifyCustomer {
			switch evt := event.(type) {
			case OrderCreated:
				return []NotifyCustomer{{OrderID: evt.OrderID, Reason: "created"}}
			case OrderCancelled:
				return []NotifyCustomer{{OrderID: evt.OrderID, Reason: "cancelled"}}
			default:
				return nil
			}
		},
	}
}
