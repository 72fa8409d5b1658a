package fixtures

import (
	"errors"
	"slices"

	"github.com/terraskye/fmodel"
)

var ErrRestaurantExists = errors.New("restaurant already exists")

type RestaurantCommand interface {
	fmodel.Identifier
	isRestaurantCommand()
}

type CreateRestaurant struct {
	RestaurantID string
	Name         string
	Menu         []string
}

type ChangeMenu struct {
	RestaurantID string
	Menu         []string
}

func (c CreateRestaurant) Identifier() string { return c.RestaurantID }
func (c ChangeMenu) Identifier() string       { return c.RestaurantID }

func (CreateRestaurant) isRestaurantCommand() {}
func (ChangeMenu) isRestaurantCommand()       {}

type RestaurantEvent interface {
	fmodel.Identifier
	EventType() string
	isRestaurantEvent()
}

type RestaurantCreated struct {
	RestaurantID string   `json:"restaurant_id"`
	Name         string   `json:"name"`
	Menu         []string `json:"menu"`
}

type MenuChanged struct {
	RestaurantID string   `json:"restaurant_id"`
	Menu         []string `json:"menu"`
}

func (e RestaurantCreated) Identifier() string { return e.RestaurantID }
func (e MenuChanged) Identifier() string       { return e.RestaurantID }

func (RestaurantCreated) EventType() string { return "RestaurantCreated" }
func (MenuChanged) EventType() string       { return "MenuChanged" }

func (RestaurantCreated) isRestaurantEvent() {}
func (MenuChanged) isRestaurantEvent()       {}

type RestaurantState struct {
	RestaurantID string
	Name         string
	Menu         []string
}

// RestaurantDecider rejects creating a restaurant twice.
func RestaurantDecider() fmodel.Decider[RestaurantCommand, RestaurantState, RestaurantEvent] {
	return fmodel.Decider[RestaurantCommand, RestaurantState, RestaurantEvent]{
		Decide: func(command RestaurantCommand, state RestaurantState) ([]RestaurantEvent, error) {
			switch cmd := command.(type) {
			case CreateRestaurant:
				if state.RestaurantID != "" {
					return nil, ErrRestaurantExists
				}
				return []RestaurantEvent{RestaurantCreated{
					RestaurantID: cmd.RestaurantID,
					Name:         cmd.Name,
					Menu:         slices.Clone(cmd.Menu),
				}}, nil
			case ChangeMenu:
				if state.RestaurantID != cmd.RestaurantID {
					return nil, nil
				}
				return []RestaurantEvent{MenuChanged{RestaurantID: cmd.RestaurantID, Menu: slices.Clone(cmd.Menu)}}, nil
			default:
				return nil, nil
			}
		},
		Evolve: func(state RestaurantState, event RestaurantEvent) RestaurantState {
			switch evt := event.(type) {
			case RestaurantCreated:
				state.RestaurantID = evt.RestaurantID
				state.Name = evt.Name
				state.Menu = slices.Clone(evt.Menu)
			case MenuChanged:
				state.Menu = slices.Clone(evt.Menu)
			default:
				fmodel.Unreachable(event)
			}
			return state
		},
		InitialState: func() RestaurantState {
			return RestaurantState{}
		},
	}
}

type RestaurantViewState struct {
	RestaurantID string
	MenuSize     int
}

func RestaurantView() fmodel.View[RestaurantViewState, RestaurantEvent] {
	return fmodel.View[RestaurantViewState, RestaurantEvent]{
		Evolve: func(state RestaurantViewState, event RestaurantEvent) RestaurantViewState {
			switch evt := event.(type) {
			case RestaurantCreated:
				state.RestaurantID = evt.RestaurantID
				state.MenuSize = len(evt.Menu)
			case MenuChanged:
				state.RestaurantID = evt.RestaurantID
				state.MenuSize = len(evt.Menu)
			default:
				fmodel.Unreachable(event)
			}
			return state
		},
		InitialState: func() RestaurantViewState {
			return RestaurantViewState{}
		},
	}
}
