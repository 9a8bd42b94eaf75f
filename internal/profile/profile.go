// Package profile handles the registration form and keeps the result on
// the user's device.
package profile

import (
	"errors"
	"strings"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// ErrValidation is returned when a registration field is blank.
var ErrValidation = errors.New("display name and group name are both required")

const (
	keyPrefix      = "doodeurimChallenge"
	DisplayNameKey = keyPrefix + "-userName"
	GroupNameKey   = keyPrefix + "-cellName"
)

// DeviceStorage is string key/value storage local to the user's device.
type DeviceStorage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Register validates the form input. Both fields are trimmed; the group
// name gets suffix appended unless it already ends with it.
func Register(displayName, groupName, suffix string) (model.UserProfile, error) {
	name := strings.TrimSpace(displayName)
	group := strings.TrimSpace(groupName)
	if name == "" || group == "" {
		return model.UserProfile{}, ErrValidation
	}
	if suffix != "" && !strings.HasSuffix(group, suffix) {
		group += suffix
	}
	return model.UserProfile{DisplayName: name, GroupName: group}, nil
}

// Load reads a previously saved profile. ok is false unless both values
// are present and non-empty.
func Load(store DeviceStorage) (p model.UserProfile, ok bool) {
	name, okName := store.Get(DisplayNameKey)
	group, okGroup := store.Get(GroupNameKey)
	if !okName || !okGroup || name == "" || group == "" {
		return model.UserProfile{}, false
	}
	return model.UserProfile{DisplayName: name, GroupName: group}, true
}

// Save overwrites the stored profile.
func Save(store DeviceStorage, p model.UserProfile) error {
	if err := store.Set(DisplayNameKey, p.DisplayName); err != nil {
		return err
	}
	return store.Set(GroupNameKey, p.GroupName)
}
