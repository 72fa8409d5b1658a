package kurrentdb

import (
	"fmt"
	"os"
	"testing"

	"github.com/kurrent-io/KurrentDB-Client-Go/kurrentdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
	"github.com/terraskye/fmodel/fixtures"
)

func TestExpectedState(t *testing.T) {
	assert.Equal(t, kurrentdb.NoStream{}, expectedState(nil))

	v := uint64(4)
	assert.Equal(t, kurrentdb.StreamRevision{Value: 4}, expectedState(&v))
}

func TestVersioned(t *testing.T) {
	got := versioned([]string{"a", "b", "c"}, 6)
	assert.Equal(t, []fmodel.Versioned[string, uint64]{
		{Value: "a", Version: 4},
		{Value: "b", Version: 5},
		{Value: "c", Version: 6},
	}, got)

	assert.Equal(t, uint64(0), versioned([]string{"a"}, 0)[0].Version)
}

func TestErrorClassification(t *testing.T) {
	assert.False(t, isWrongExpectedVersion(fmt.Errorf("boom")))
	assert.False(t, isStreamNotFound(fmt.Errorf("boom")))
}

func orderCodec() *codec.Registry[fixtures.OrderEvent] {
	r := codec.NewRegistry[fixtures.OrderEvent]()
	codec.Register[fixtures.OrderEvent, fixtures.OrderCreated](r, "OrderCreated")
	codec.Register[fixtures.OrderEvent, fixtures.OrderUpdated](r, "OrderUpdated")
	codec.Register[fixtures.OrderEvent, fixtures.OrderCancelled](r, "OrderCancelled")
	return r
}

func newTestClient(t *testing.T) *kurrentdb.Client {
	if os.Getenv("FMODEL_INTEGRATION") == "" {
		t.Skip("set FMODEL_INTEGRATION=1 to run against a KurrentDB container")
	}

	ctx := t.Context()
	container, err := testcontainers.Run(
		ctx, "docker.kurrent.io/kurrent-latest/kurrentdb:latest",
		testcontainers.WithEnv(map[string]string{
			"KURRENTDB_INSECURE":        "true",
			"KURRENTDB_MEM_DB":          "true",
			"KURRENTDB_RUN_PROJECTIONS": "None",
		}),
		testcontainers.WithExposedPorts("2113/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("2113/tcp")),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Errorf("failed to terminate container: %s", err.Error())
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "2113/tcp", "")
	require.NoError(t, err)

	cfg, err := kurrentdb.ParseConnectionString("kurrentdb://" + endpoint + "?tls=false")
	require.NoError(t, err)
	client, err := kurrentdb.NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEventRepository_Integration(t *testing.T) {
	client := newTestClient(t)
	ctx := t.Context()

	repo := NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent](client, orderCodec())
	aggregate := fmodel.NewEventSourcedAggregate(repo, fixtures.OrderDecider())

	empty, err := repo.FetchEvents(ctx, fixtures.CancelOrder{OrderID: 1})
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i, command := range []fixtures.OrderCommand{
		fixtures.CreateOrder{OrderID: 1, CustomerName: "John Doe", Items: []string{"Item 1", "Item 2"}},
		fixtures.UpdateOrder{OrderID: 1, NewItems: []string{"Item 3", "Item 4"}},
		fixtures.CancelOrder{OrderID: 1},
	} {
		saved, err := aggregate.Handle(ctx, command)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, uint64(i), saved[0].Version)
	}

	_, err = repo.Save(ctx, []fixtures.OrderEvent{fixtures.OrderCancelled{OrderID: 1}}, nil)
	assert.ErrorIs(t, err, fmodel.ErrConcurrencyConflict)

	stale := uint64(0)
	_, err = repo.Save(ctx, []fixtures.OrderEvent{fixtures.OrderCancelled{OrderID: 1}}, &stale)
	assert.ErrorIs(t, err, fmodel.ErrConcurrencyConflict)
}
