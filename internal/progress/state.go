package progress

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// NewState returns a state with every day 1..days at its zero status.
func NewState(days int) model.ChallengeState {
	state := make(model.ChallengeState, days)
	for day := 1; day <= days; day++ {
		state[model.DayKey(day)] = model.DayStatus{}
	}
	return state
}

// Merge overlays a persisted snapshot onto a fresh state. Only the fields
// present in a day's record replace the zero defaults; keys outside 1..days
// are ignored and a day whose record cannot be decoded keeps its defaults.
func Merge(days int, snap docstore.Snapshot) model.ChallengeState {
	state := NewState(days)
	if !snap.Exists {
		return state
	}
	for key, raw := range snap.Data {
		status, ok := state[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &status); err != nil {
			log.Warn().Err(err).Str("day", key).Msg("ignoring malformed day record")
			continue
		}
		if status.Count < 0 {
			status.Count = 0
		}
		state[key] = status
	}
	return state
}

// advance combines what the session already holds with an incoming record
// so that counts never go down and completion flags never revert.
func advance(current, incoming model.DayStatus) model.DayStatus {
	out := current
	if incoming.Count > out.Count {
		out.Count = incoming.Count
	}
	out.Completed = out.Completed || incoming.Completed
	out.PrayerCompleted = out.PrayerCompleted || incoming.PrayerCompleted
	return out
}
