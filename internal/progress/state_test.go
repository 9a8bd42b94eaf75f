package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

func TestNewState(t *testing.T) {
	state := NewState(31)
	assert.Len(t, state, 31)
	for day := 1; day <= 31; day++ {
		assert.Equal(t, model.DayStatus{}, state[model.DayKey(day)])
	}
}

func TestMerge_Absent(t *testing.T) {
	assert.Equal(t, NewState(30), Merge(30, docstore.Snapshot{}))
}

func TestMerge_PartialRecord(t *testing.T) {
	snap := docstore.Snapshot{Exists: true, Data: map[string]json.RawMessage{
		"5":       json.RawMessage(`{"count":2}`),
		"0":       json.RawMessage(`{"count":9}`),
		"32":      json.RawMessage(`{"count":9}`),
		"october": json.RawMessage(`"not a day"`),
	}}

	state := Merge(31, snap)
	assert.Len(t, state, 31)
	assert.Equal(t, model.DayStatus{Count: 2, Completed: false}, state["5"])
	for key, status := range state {
		if key != "5" {
			assert.Equal(t, model.DayStatus{}, status, key)
		}
	}
}

func TestMerge_OverlayKeepsDefaultsForMissingFields(t *testing.T) {
	snap := docstore.Snapshot{Exists: true, Data: map[string]json.RawMessage{
		"1": json.RawMessage(`{"prayerCompleted":true}`),
		"2": json.RawMessage(`{"count":5,"completed":true,"extra":"ignored"}`),
	}}
	state := Merge(3, snap)
	assert.Equal(t, model.DayStatus{PrayerCompleted: true}, state["1"])
	assert.Equal(t, model.DayStatus{Count: 5, Completed: true}, state["2"])
}

func TestMerge_MalformedDayKeepsDefaults(t *testing.T) {
	snap := docstore.Snapshot{Exists: true, Data: map[string]json.RawMessage{
		"1": json.RawMessage(`{"count":"five"}`),
		"2": json.RawMessage(`[1,2]`),
		"3": json.RawMessage(`{"count":-4}`),
	}}
	state := Merge(3, snap)
	assert.Equal(t, model.DayStatus{}, state["1"])
	assert.Equal(t, model.DayStatus{}, state["2"])
	assert.Equal(t, 0, state["3"].Count)
}

func TestAdvance(t *testing.T) {
	current := model.DayStatus{Count: 3, Completed: false, PrayerCompleted: true}
	incoming := model.DayStatus{Count: 5, Completed: true}
	assert.Equal(t, model.DayStatus{Count: 5, Completed: true, PrayerCompleted: true}, advance(current, incoming))
	assert.Equal(t, model.DayStatus{Count: 5, Completed: true, PrayerCompleted: true}, advance(incoming, current))
}
