package progress

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

type fakeAuth struct {
	mu        sync.Mutex
	uid       string
	listeners map[int]func(string)
	next      int

	failWith   error
	anonCalls  int
	tokenCalls []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{listeners: map[int]func(string){}}
}

func (f *fakeAuth) OnUserChanged(fn func(string)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	uid := f.uid
	f.mu.Unlock()

	fn(uid)
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) SignInAnonymously(context.Context) (string, error) {
	f.mu.Lock()
	f.anonCalls++
	err := f.failWith
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	f.set("anon-user")
	return "anon-user", nil
}

func (f *fakeAuth) SignInWithToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	f.tokenCalls = append(f.tokenCalls, token)
	err := f.failWith
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	f.set("token-user")
	return "token-user", nil
}

func (f *fakeAuth) set(uid string) {
	f.mu.Lock()
	f.uid = uid
	fns := make([]func(string), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(uid)
	}
}

func (f *fakeAuth) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

var _ identity.Provider = (*fakeAuth)(nil)

type subscriber struct {
	path   docstore.Path
	onNext func(docstore.Snapshot)
	onErr  func(error)
}

// fakeStore keeps documents as raw JSON per key and delivers snapshots
// synchronously.
type fakeStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]json.RawMessage
	subs     map[int]subscriber
	next     int
	writes   []map[string]any
	failWith error
	failRead error

	// gate, when set, runs before each upsert touches the store.
	gate func(partial map[string]any)
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]json.RawMessage{}, subs: map[int]subscriber{}}
}

func (f *fakeStore) Subscribe(_ context.Context, path docstore.Path, onNext func(docstore.Snapshot), onErr func(error)) (func(), error) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = subscriber{path: path, onNext: onNext, onErr: onErr}
	snap, readErr := f.snapshotLocked(path), f.failRead
	f.mu.Unlock()

	if readErr != nil {
		onErr(readErr)
	} else {
		onNext(snap)
	}
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) Upsert(_ context.Context, path docstore.Path, partial map[string]any) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		gate(partial)
	}

	f.mu.Lock()
	f.writes = append(f.writes, partial)
	if f.failWith != nil {
		err := f.failWith
		f.mu.Unlock()
		return err
	}
	doc := f.docs[path.String()]
	if doc == nil {
		doc = map[string]json.RawMessage{}
		f.docs[path.String()] = doc
	}
	for k, v := range partial {
		raw, err := json.Marshal(v)
		if err != nil {
			f.mu.Unlock()
			return err
		}
		doc[k] = raw
	}
	f.mu.Unlock()

	f.notify(path)
	return nil
}

// put replaces a stored document as if another device wrote it, then
// notifies subscribers.
func (f *fakeStore) put(path docstore.Path, doc map[string]string) {
	f.mu.Lock()
	raw := map[string]json.RawMessage{}
	for k, v := range doc {
		raw[k] = json.RawMessage(v)
	}
	f.docs[path.String()] = raw
	f.mu.Unlock()
	f.notify(path)
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	subs := f.subscribersLocked(docstore.Path{}, true)
	f.mu.Unlock()
	for _, s := range subs {
		s.onErr(err)
	}
}

func (f *fakeStore) notify(path docstore.Path) {
	f.mu.Lock()
	subs := f.subscribersLocked(path, false)
	snap := f.snapshotLocked(path)
	f.mu.Unlock()
	for _, s := range subs {
		s.onNext(snap)
	}
}

func (f *fakeStore) subscribersLocked(path docstore.Path, all bool) []subscriber {
	var out []subscriber
	for _, s := range f.subs {
		if all || s.path == path {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeStore) snapshotLocked(path docstore.Path) docstore.Snapshot {
	doc, ok := f.docs[path.String()]
	if !ok {
		return docstore.Snapshot{}
	}
	data := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		data[k] = v
	}
	return docstore.Snapshot{Exists: true, Data: data}
}

func (f *fakeStore) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

var (
	_ docstore.Store = (*fakeStore)(nil)

	errStorage = errors.New("storage unavailable")
)

// stored decodes one day of the persisted document at path.
func (f *fakeStore) stored(path docstore.Path, key string) (model.DayStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var status model.DayStatus
	raw, ok := f.docs[path.String()][key]
	if !ok {
		return status, nil
	}
	err := json.Unmarshal(raw, &status)
	return status, err
}
