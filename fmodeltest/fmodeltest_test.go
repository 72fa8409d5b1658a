package fmodeltest_test

import (
	"testing"

	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/fmodeltest"
)

func TestOrderDecider(t *testing.T) {
	created := fixtures.OrderCreated{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1", "Item 2"}}

	t.Run("create", func(t *testing.T) {
		fmodeltest.ForDecider(fixtures.OrderDecider()).
			Given().
			When(fixtures.CreateOrder{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1", "Item 2"}}).
			Then(t, created)
	})

	t.Run("update", func(t *testing.T) {
		fmodeltest.ForDecider(fixtures.OrderDecider()).
			Given(created).
			When(fixtures.UpdateOrder{OrderID: 1, NewItems: []string{"Item 3"}}).
			Then(t, fixtures.OrderUpdated{OrderID: 1, UpdatedItems: []string{"Item 3"}})
	})

	t.Run("update of another order", func(t *testing.T) {
		fmodeltest.ForDecider(fixtures.OrderDecider()).
			Given(created).
			When(fixtures.UpdateOrder{OrderID: 99, NewItems: []string{"Item 3"}}).
			Then(t)
	})

	t.Run("update after cancel", func(t *testing.T) {
		fmodeltest.ForDecider(fixtures.OrderDecider()).
			Given(created, fixtures.OrderCancelled{OrderID: 1}).
			When(fixtures.UpdateOrder{OrderID: 1}).
			ThenError(t, fixtures.ErrOrderCancelled)
	})

	t.Run("state stored cancel", func(t *testing.T) {
		fmodeltest.ForDecider(fixtures.OrderDecider()).
			GivenState(fixtures.OrderState{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1"}}).
			When(fixtures.CancelOrder{OrderID: 1}).
			ThenState(t, fixtures.OrderState{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1"}, IsCancelled: true})
	})
}

func TestOrderView(t *testing.T) {
	fmodeltest.ForView(fixtures.OrderView()).
		Given(
			fixtures.OrderCreated{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1"}},
			fixtures.OrderUpdated{OrderID: 1, UpdatedItems: []string{"Item 2"}},
		).
		Then(t, fixtures.OrderViewState{OrderID: 1, Customer: "John Doe", Items: []string{"Item 2"}, Revisions: 2})

	fmodeltest.ForView(fixtures.OrderCountView()).Then(t, 0)
}

func TestRestaurantDecider(t *testing.T) {
	created := fixtures.RestaurantCreated{RestaurantID: "r-1", Name: "Bistro", Menu: []string{"Soup"}}

	fmodeltest.ForDecider(fixtures.RestaurantDecider()).
		Given(created).
		When(fixtures.CreateRestaurant{RestaurantID: "r-1"}).
		ThenError(t, fixtures.ErrRestaurantExists)

	fmodeltest.ForDecider(fixtures.RestaurantDecider()).
		Given(created).
		When(fixtures.ChangeMenu{RestaurantID: "r-1", Menu: []string{"Soup", "Salad"}}).
		Then(t, fixtures.MenuChanged{RestaurantID: "r-1", Menu: []string{"Soup", "Salad"}})
}
