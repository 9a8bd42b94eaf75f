// Package docstore is the durable document store the challenge state is
// mirrored into. Documents are JSON objects addressed by a path; writes
// merge top-level keys and every write notifies the path's subscribers.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrRead wraps failures delivered to a subscription.
	ErrRead = errors.New("storage read error")
	// ErrWrite wraps failures of Upsert.
	ErrWrite = errors.New("storage write error")
)

const (
	namespace        = "artifacts"
	usersCollection  = "users"
	statusCollection = "challenge_status"
)

// Path addresses one user's document for one challenge instance.
type Path struct {
	AppID       string
	UserID      string
	InstanceKey string
}

func ChallengePath(appID, userID, instanceKey string) Path {
	return Path{AppID: appID, UserID: userID, InstanceKey: instanceKey}
}

// String renders the path as
// artifacts/<appID>/users/<userID>/challenge_status/<instanceKey>.
func (p Path) String() string {
	return strings.Join([]string{
		namespace, p.AppID, usersCollection, p.UserID, statusCollection, p.InstanceKey,
	}, "/")
}

func (p Path) topic() string {
	return "docs/" + p.String()
}

// Snapshot is the full current record at a path, or Exists == false.
type Snapshot struct {
	Exists bool
	Data   map[string]json.RawMessage
}

type Store interface {
	// Subscribe delivers the current snapshot, then a fresh one after every
	// write to path, until cancel is called. Read failures go to onErr and
	// wrap ErrRead.
	Subscribe(ctx context.Context, path Path, onNext func(Snapshot), onErr func(error)) (cancel func(), err error)
	// Upsert merges partial into the document at path. Only the top-level
	// keys present in partial are touched.
	Upsert(ctx context.Context, path Path, partial map[string]any) error
}
