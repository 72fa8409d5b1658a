// Package fixtures provides example domains and repository spies shared by
// the package tests and the demo.
package fixtures

import (
	"errors"
	"slices"
	"strconv"

	"github.com/terraskye/fmodel"
)

var ErrOrderCancelled = errors.New("order is cancelled")

// OrderCommand is the closed set of order commands.
type OrderCommand interface {
	fmodel.Identifier
	isOrderCommand()
}

type CreateOrder struct {
	OrderID      uint32
	CustomerName string
	Items        []string
}

type UpdateOrder struct {
	OrderID  uint32
	NewItems []string
}

type CancelOrder struct {
	OrderID uint32
}

func (c CreateOrder) Identifier() string { return orderKey(c.OrderID) }
func (c UpdateOrder) Identifier() string { return orderKey(c.OrderID) }
func (c CancelOrder) Identifier() string { return orderKey(c.OrderID) }

func (CreateOrder) isOrderCommand() {}
func (UpdateOrder) isOrderCommand() {}
func (CancelOrder) isOrderCommand() {}

// OrderEvent is the closed set of order events.
type OrderEvent interface {
	fmodel.Identifier
	EventType() string
	isOrderEvent()
}

type OrderCreated struct {
	OrderID      uint32   `json:"order_id"`
	CustomerName string   `json:"customer_name"`
	Items        []string `json:"items"`
}

type OrderUpdated struct {
	OrderID      uint32   `json:"order_id"`
	UpdatedItems []string `json:"updated_items"`
}

type OrderCancelled struct {
	OrderID uint32 `json:"order_id"`
}

func (e OrderCreated) Identifier() string   { return orderKey(e.OrderID) }
func (e OrderUpdated) Identifier() string   { return orderKey(e.OrderID) }
func (e OrderCancelled) Identifier() string { return orderKey(e.OrderID) }

func (OrderCreated) EventType() string   { return "OrderCreated" }
func (OrderUpdated) EventType() string   { return "OrderUpdated" }
func (OrderCancelled) EventType() string { return "OrderCancelled" }

func (OrderCreated) isOrderEvent()   {}
func (OrderUpdated) isOrderEvent()   {}
func (OrderCancelled) isOrderEvent() {}

type OrderState struct {
	OrderID      uint32   `json:"order_id"`
	CustomerName string   `json:"customer_name"`
	Items        []string `json:"items"`
	IsCancelled  bool     `json:"is_cancelled"`
}

func (s OrderState) Identifier() string { return orderKey(s.OrderID) }

func orderKey(id uint32) string {
	return "order-" + strconv.FormatUint(uint64(id), 10)
}

// OrderDecider decides on order commands.
//
// Update and Cancel targeting another order than the current state are
// no-ops. Updating a cancelled order is rejected with ErrOrderCancelled.
func OrderDecider() fmodel.Decider[OrderCommand, OrderState, OrderEvent] {
	return fmodel.Decider[OrderCommand, OrderState, OrderEvent]{
		Decide: func(command OrderCommand, state OrderState) ([]OrderEvent, error) {
			switch cmd := command.(type) {
			case CreateOrder:
				return []OrderEvent{OrderCreated{
					OrderID:      cmd.OrderID,
					CustomerName: cmd.CustomerName,
					Items:        slices.Clone(cmd.Items),
				}}, nil
			case UpdateOrder:
				if state.OrderID != cmd.OrderID {
					return nil, nil
				}
				if state.IsCancelled {
					return nil, ErrOrderCancelled
				}
				return []OrderEvent{OrderUpdated{
					OrderID:      cmd.OrderID,
					UpdatedItems: slices.Clone(cmd.NewItems),
				}}, nil
			case CancelOrder:
				if state.OrderID != cmd.OrderID {
					return nil, nil
				}
				return []OrderEvent{OrderCancelled{OrderID: cmd.OrderID}}, nil
			default:
				return nil, nil
			}
		},
		Evolve: func(state OrderState, event OrderEvent) OrderState {
			switch evt := event.(type) {
			case OrderCreated:
				state.OrderID = evt.OrderID
				state.CustomerName = evt.CustomerName
				state.Items = slices.Clone(evt.Items)
			case OrderUpdated:
				state.Items = slices.Clone(evt.UpdatedItems)
			case OrderCancelled:
				state.IsCancelled = true
			default:
				fmodel.Unreachable(event)
			}
			return state
		},
		InitialState: func() OrderState {
			return OrderState{Items: []string{}}
		},
	}
}

// OrderViewState is the read-side projection of an order.
type OrderViewState struct {
	OrderID     uint32   `json:"order_id"`
	Customer    string   `json:"customer"`
	Items       []string `json:"items"`
	IsCancelled bool     `json:"is_cancelled"`
	Revisions   int      `json:"revisions"`
}

func (s OrderViewState) Identifier() string { return orderKey(s.OrderID) }

func OrderView() fmodel.View[OrderViewState, OrderEvent] {
	return fmodel.View[OrderViewState, OrderEvent]{
		Evolve: func(state OrderViewState, event OrderEvent) OrderViewState {
			switch evt := event.(type) {
			case OrderCreated:
				state.OrderID = evt.OrderID
				state.Customer = evt.CustomerName
				state.Items = slices.Clone(evt.Items)
			case OrderUpdated:
				state.OrderID = evt.OrderID
				state.Items = slices.Clone(evt.UpdatedItems)
			case OrderCancelled:
				state.OrderID = evt.OrderID
				state.IsCancelled = true
			default:
				fmodel.Unreachable(event)
			}
			state.Revisions++
			return state
		},
		InitialState: func() OrderViewState {
			return OrderViewState{Items: []string{}}
		},
	}
}

// OrderCountView counts events per order, subscribed to the same event
// stream as OrderView.
func OrderCountView() fmodel.View[int, OrderEvent] {
	return fmodel.View[int, OrderEvent]{
		Evolve:       func(count int, _ OrderEvent) int { return count + 1 },
		InitialState: func() int { return 0 },
	}
}
