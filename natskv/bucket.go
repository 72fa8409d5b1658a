// Package natskv stores fmodel states in a NATS JetStream key/value bucket.
// The version of a state is the revision NATS assigned to its last write,
// which makes every save a compare-and-set.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/codec"
)

type Config struct {
	Connect Connector // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Bucket  string
	Storage jetstream.StorageType
	History uint8
}

// Bucket is an open key/value bucket.
type Bucket struct {
	kv    jetstream.KeyValue
	close closeFunc
}

// Open connects and creates or updates the bucket.
func Open(ctx context.Context, cfg Config) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeConn, err := doConnect()
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeConn()
		return nil, err
	}

	history := cfg.History
	if history == 0 {
		history = 1
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  cfg.Bucket,
		Storage: cfg.Storage,
		History: history,
	})
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	return &Bucket{kv: kv, close: closeConn}, nil
}

func (b *Bucket) Close() error {
	if b.close != nil {
		b.close()
	}
	return nil
}

type states[S any] struct {
	bucket *Bucket
	codec  codec.Codec[S]
}

// record is the value stored under a key.
type record struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

func encodeRecord(rec record) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (record, error) {
	var rec record
	err := json.Unmarshal(data, &rec)
	return rec, err
}

func (s states[S]) fetch(ctx context.Context, id string) (*fmodel.Versioned[S, uint64], error) {
	key := Key(id)
	entry, err := s.bucket.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	rec, err := decodeRecord(entry.Value())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	state, err := s.codec.Unmarshal(rec.Type, rec.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &fmodel.Versioned[S, uint64]{Value: state, Version: entry.Revision()}, nil
}

func (s states[S]) save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	key := Key(fmodel.IdentifierOf(state))
	name, data, err := s.codec.Marshal(state)
	if err != nil {
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("encode %s: %w", key, err)
	}
	value, err := encodeRecord(record{Type: name, Data: data})
	if err != nil {
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("encode %s: %w", key, err)
	}

	var revision uint64
	if expected == nil {
		revision, err = s.bucket.kv.Create(ctx, key, value)
	} else {
		revision, err = s.bucket.kv.Update(ctx, key, value, *expected)
	}
	if err != nil {
		if isRevisionConflict(err) {
			return fmodel.Versioned[S, uint64]{}, s.conflict(ctx, key, expected)
		}
		return fmodel.Versioned[S, uint64]{}, fmt.Errorf("put %s: %w", key, err)
	}
	return fmodel.Versioned[S, uint64]{Value: state, Version: revision}, nil
}

func (s states[S]) conflict(ctx context.Context, key string, expected *uint64) error {
	var actual *uint64
	if entry, err := s.bucket.kv.Get(ctx, key); err == nil {
		revision := entry.Revision()
		actual = &revision
	}
	return fmodel.NewVersionConflictError(key, expected, actual)
}

// isRevisionConflict reports whether a Create or Update lost a compare-and-set.
func isRevisionConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return false
}

// Key maps an identifier onto the key alphabet NATS accepts.
func Key(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '=', r == '/', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

// StateRepository is a NATS KV fmodel.StateRepository.
type StateRepository[C, S any] struct {
	states states[S]
}

var _ fmodel.StateRepository[string, string, uint64] = (*StateRepository[string, string])(nil)

func NewStateRepository[C, S any](bucket *Bucket, c codec.Codec[S]) *StateRepository[C, S] {
	return &StateRepository[C, S]{states: states[S]{bucket: bucket, codec: c}}
}

func (r *StateRepository[C, S]) FetchState(ctx context.Context, command C) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, fmodel.IdentifierOf(command))
}

func (r *StateRepository[C, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}

// ViewStateRepository is a NATS KV fmodel.ViewStateRepository.
type ViewStateRepository[E, S any] struct {
	states states[S]
}

var _ fmodel.ViewStateRepository[string, string, uint64] = (*ViewStateRepository[string, string])(nil)

func NewViewStateRepository[E, S any](bucket *Bucket, c codec.Codec[S]) *ViewStateRepository[E, S] {
	return &ViewStateRepository[E, S]{states: states[S]{bucket: bucket, codec: c}}
}

func (r *ViewStateRepository[E, S]) FetchState(ctx context.Context, event E) (*fmodel.Versioned[S, uint64], error) {
	return r.states.fetch(ctx, fmodel.IdentifierOf(event))
}

func (r *ViewStateRepository[E, S]) Save(ctx context.Context, state S, expected *uint64) (fmodel.Versioned[S, uint64], error) {
	return r.states.save(ctx, state, expected)
}
