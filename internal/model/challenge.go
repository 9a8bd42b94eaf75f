package model

import "strconv"

// DayStatus is the per-day progress record, stored under its day key
// inside the challenge document.
type DayStatus struct {
	Count           int  `json:"count"`
	Completed       bool `json:"completed"`
	PrayerCompleted bool `json:"prayerCompleted"`
}

// ChallengeState maps "1".."N" to that day's status.
type ChallengeState map[string]DayStatus

// DayKey is the document key for a calendar day.
func DayKey(day int) string {
	return strconv.Itoa(day)
}

// Clone returns an independent copy.
func (s ChallengeState) Clone() ChallengeState {
	out := make(ChallengeState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
