package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/notify"
)

// Documents is the Store backed by the documents table, with change
// notifications carried on a notify.Bus.
type Documents struct {
	store db.Store
	bus   notify.Bus
}

var _ Store = (*Documents)(nil)

func NewDocuments(store db.Store, bus notify.Bus) *Documents {
	return &Documents{store: store, bus: bus}
}

func (d *Documents) Upsert(ctx context.Context, path Path, partial map[string]any) error {
	patch, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrWrite, path, err)
	}
	if err := d.store.MergeDocument(ctx, path.String(), patch); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}

	// the write is durable at this point; a lost notification only delays
	// other subscribers until their next snapshot
	if err := d.bus.Publish(ctx, path.topic(), patch); err != nil {
		log.Warn().Err(err).Str("path", path.String()).Msg("failed to publish document change")
	}
	return nil
}

func (d *Documents) Subscribe(ctx context.Context, path Path, onNext func(Snapshot), onErr func(error)) (func(), error) {
	deliver := func(ctx context.Context) {
		snap, err := d.read(ctx, path)
		if err != nil {
			onErr(err)
			return
		}
		onNext(snap)
	}

	cancel, err := d.bus.Subscribe(ctx, path.topic(), func([]byte) {
		deliver(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing to %s: %v", ErrRead, path, err)
	}

	deliver(ctx)
	return cancel, nil
}

func (d *Documents) read(ctx context.Context, path Path) (Snapshot, error) {
	doc, err := d.store.GetDocument(ctx, path.String())
	if errors.Is(err, db.ErrNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decoding %s: %v", ErrRead, path, err)
	}
	return Snapshot{Exists: true, Data: data}, nil
}
