package endpoints

import (
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/config"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/content"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
)

var weekdayLabels = []string{"일", "월", "화", "수", "목", "금", "토"}

// Calendar lays tracker progress out against the challenge month and its text.
type Calendar struct {
	Rules config.Challenge
	Text  *content.Content
}

func (c Calendar) date(day int) time.Time {
	loc := c.Rules.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(c.Rules.Year, c.Rules.Month, day, 0, 0, 0, 0, loc)
}

// LeadingBlanks is the number of empty cells before the 1st in a
// Sunday-first week.
func (c Calendar) LeadingBlanks() int {
	return int(c.date(1).Weekday())
}

func (c Calendar) Day(v progress.DayView) packets.DayResponse {
	d := c.date(v.Day)
	out := packets.DayResponse{
		Day:             v.Day,
		Date:            fmt.Sprintf("%d년 %d월 %d일", d.Year(), int(d.Month()), d.Day()),
		Weekday:         weekdayLabels[d.Weekday()],
		Declaration:     c.Text.Declaration(v.Day),
		Count:           v.Status.Count,
		MaxCount:        c.Rules.MaxDeclarationCount,
		Completed:       v.Status.Completed,
		PrayerCompleted: v.Status.PrayerCompleted,
		FullyCompleted:  v.FullyCompleted,
		Unlocked:        v.Unlocked,
	}
	if c.Rules.RequirePrayer {
		out.PrayerTopic = c.Text.PrayerTopic(v.Day)
	}
	return out
}

func (c Calendar) View(p progress.Progress, who model.UserProfile, registered bool) packets.ChallengeResponse {
	out := packets.ChallengeResponse{
		Title:             c.Text.Title,
		Tagline:           c.Text.Tagline,
		InstanceKey:       c.Rules.InstanceKey(),
		Year:              c.Rules.Year,
		Month:             int(c.Rules.Month),
		RequirePrayer:     c.Rules.RequirePrayer,
		UserID:            p.UserID,
		Loading:           p.Loading,
		Loaded:            p.Loaded,
		WeekdayLabels:     weekdayLabels,
		LeadingBlanks:     c.LeadingBlanks(),
		SelectedDay:       p.SelectedDay,
		ChallengeComplete: p.ChallengeComplete,
		Days:              make([]packets.DayResponse, 0, len(p.Days)),
	}
	if p.ChallengeComplete && registered {
		out.CompletionMessage = completionMessage(who)
	}
	for _, v := range p.Days {
		out.Days = append(out.Days, c.Day(v))
	}
	return out
}

func greeting(p model.UserProfile) string {
	return fmt.Sprintf("%s %s님", p.GroupName, p.DisplayName)
}

func completionMessage(p model.UserProfile) string {
	return greeting(p) + " 축복합니다!"
}
