package memory

import (
	"context"
	"slices"
	"sync"
)

// ActionPublisher records published actions and forwards them to a buffered
// channel. Actions are dropped from the channel, not from the record, when
// the buffer is full.
type ActionPublisher[A any] struct {
	mu        sync.Mutex
	published []A
	out       chan A
	closed    bool
}

func NewActionPublisher[A any](buffer int) *ActionPublisher[A] {
	return &ActionPublisher[A]{out: make(chan A, buffer)}
}

func (p *ActionPublisher[A]) Publish(ctx context.Context, actions []A) ([]A, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = append(p.published, actions...)
	if !p.closed {
		for _, action := range actions {
			select {
			case p.out <- action:
			default:
			}
		}
	}
	return actions, nil
}

// Actions returns the channel published actions are forwarded to.
func (p *ActionPublisher[A]) Actions() <-chan A {
	return p.out
}

// Published returns every action published so far.
func (p *ActionPublisher[A]) Published() []A {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.published)
}

func (p *ActionPublisher[A]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.out)
	}
	return nil
}
