package fmodel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/memory"
)

func TestSaga_ComputeNewActions(t *testing.T) {
	saga := fixtures.ShipmentSaga()

	assert.Equal(t, []fixtures.CreateShipment{{
		ShipmentID: "shipment-order-1",
		OrderID:    1,
		Items:      []string{"Item 1", "Item 2"},
	}}, saga.ComputeNewActions(orderCreated))

	assert.Empty(t, saga.ComputeNewActions(orderCancelled))
}

func TestMapAction(t *testing.T) {
	mapped := fmodel.MapAction(fixtures.ShipmentSaga(), func(c fixtures.CreateShipment) string {
		return c.ShipmentID
	})
	assert.Equal(t, []string{"shipment-order-1"}, mapped.ComputeNewActions(orderCreated))
}

func TestMapActionResult(t *testing.T) {
	mapped := fmodel.MapActionResult(fixtures.NotificationSaga(), func(id uint32) fixtures.OrderEvent {
		return fixtures.OrderCancelled{OrderID: id}
	})
	assert.Equal(t, []fixtures.NotifyCustomer{{OrderID: 4, Reason: "cancelled"}}, mapped.ComputeNewActions(4))
}

func TestCombineSagas(t *testing.T) {
	restaurantSaga := fmodel.Saga[fixtures.RestaurantEvent, string]{
		React: func(e fixtures.RestaurantEvent) []string { return []string{"welcome " + e.Identifier()} },
	}
	combined := fmodel.CombineSagas(fixtures.ShipmentSaga(), restaurantSaga)

	actions := combined.ComputeNewActions(fmodel.First[fixtures.OrderEvent, fixtures.RestaurantEvent](orderCreated))
	require.Len(t, actions, 1)
	shipment, ok := actions[0].First()
	require.True(t, ok)
	assert.Equal(t, "shipment-order-1", shipment.ShipmentID)

	actions = combined.ComputeNewActions(fmodel.Second[fixtures.OrderEvent, fixtures.RestaurantEvent](fixtures.MenuChanged{RestaurantID: "r-1"}))
	require.Len(t, actions, 1)
	welcome, ok := actions[0].Second()
	require.True(t, ok)
	assert.Equal(t, "welcome r-1", welcome)

	assert.Empty(t, combined.ComputeNewActions(combinedEvent{}))
}

func TestMergeSagas(t *testing.T) {
	merged := fmodel.MergeSagas(fixtures.ShipmentSaga(), fixtures.NotificationSaga())

	actions := merged.ComputeNewActions(orderCreated)
	require.Len(t, actions, 2)
	_, isShipment := actions[0].First()
	notification, isNotification := actions[1].Second()
	assert.True(t, isShipment, "first saga's actions come first")
	assert.True(t, isNotification)
	assert.Equal(t, "created", notification.Reason)

	actions = merged.ComputeNewActions(orderCancelled)
	require.Len(t, actions, 1)
	_, isNotification = actions[0].Second()
	assert.True(t, isNotification)
}

func TestSagaManager_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes computed actions", func(t *testing.T) {
		publisher := memory.NewActionPublisher[fixtures.CreateShipment](4)
		manager := fmodel.NewSagaManager(publisher, fixtures.ShipmentSaga())

		published, err := manager.Handle(ctx, orderCreated)
		require.NoError(t, err)
		assert.Len(t, published, 1)
		assert.Equal(t, published, publisher.Published())
	})

	t.Run("publisher errors are returned unchanged", func(t *testing.T) {
		errBroker := errors.New("broker down")
		manager := fmodel.NewSagaManager(fmodel.ActionPublisherFunc[fixtures.NotifyCustomer](
			func(context.Context, []fixtures.NotifyCustomer) ([]fixtures.NotifyCustomer, error) {
				return nil, errBroker
			},
		), fixtures.NotificationSaga())

		_, err := manager.Handle(ctx, orderCancelled)
		assert.Same(t, errBroker, err)
	})
}
