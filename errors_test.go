package fmodel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terraskye/fmodel"
)

func TestErrorStrings(t *testing.T) {
	five, seven := uint64(5), uint64(7)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "VersionConflictError",
			err:  fmodel.NewVersionConflictError("stream-123", &five, &seven),
			want: `concurrency conflict on stream "stream-123": (expected version 5, actual 7)`,
		},
		{
			name: "VersionConflictError without stored version",
			err:  fmodel.NewVersionConflictError[uint64]("stream-123", &five, nil),
			want: `concurrency conflict on stream "stream-123": (expected version 5, actual none)`,
		},
		{
			name: "DomainError",
			err:  &fmodel.DomainError{Err: errors.New("order is cancelled")},
			want: "business rule violation: order is cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("order is cancelled")
	conflict := fmodel.NewVersionConflictError[uint64]("order-1", nil, nil)

	assert.ErrorIs(t, conflict, fmodel.ErrConcurrencyConflict)
	assert.ErrorIs(t, fmt.Errorf("save: %w", conflict), fmodel.ErrConcurrencyConflict)

	domain := &fmodel.DomainError{Err: cause}
	assert.ErrorIs(t, domain, fmodel.ErrBusinessRuleViolation)
	assert.ErrorIs(t, domain, cause)
	assert.NotErrorIs(t, domain, fmodel.ErrConcurrencyConflict)

	var target *fmodel.VersionConflictError
	assert.ErrorAs(t, fmt.Errorf("save: %w", conflict), &target)
	assert.Equal(t, "order-1", target.Stream)
}

func TestUnreachable(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic, got %v", r)
		}
		assert.ErrorIs(t, err, fmodel.ErrUnknownVariant)
		assert.Contains(t, err.Error(), "int")
	}()
	fmodel.Unreachable(42)
}
