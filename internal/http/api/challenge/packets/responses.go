package packets

// RESPONSES FOR /api/*

type SessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type ProfileResponse struct {
	Registered  bool   `json:"registered"`
	DisplayName string `json:"display_name,omitempty"`
	GroupName   string `json:"group_name,omitempty"`
	Greeting    string `json:"greeting,omitempty"`
}

// DayResponse is one calendar cell with its text.
type DayResponse struct {
	Day             int    `json:"day"`
	Date            string `json:"date"`
	Weekday         string `json:"weekday"`
	Declaration     string `json:"declaration"`
	PrayerTopic     string `json:"prayer_topic,omitempty"`
	Count           int    `json:"count"`
	MaxCount        int    `json:"max_count"`
	Completed       bool   `json:"completed"`
	PrayerCompleted bool   `json:"prayer_completed"`
	FullyCompleted  bool   `json:"fully_completed"`
	Unlocked        bool   `json:"unlocked"`
}

type ChallengeResponse struct {
	Title             string        `json:"title"`
	Tagline           string        `json:"tagline"`
	InstanceKey       string        `json:"instance_key"`
	Year              int           `json:"year"`
	Month             int           `json:"month"`
	RequirePrayer     bool          `json:"require_prayer"`
	UserID            string        `json:"user_id"`
	Loading           bool          `json:"loading"`
	Loaded            bool          `json:"loaded"`
	WeekdayLabels     []string      `json:"weekday_labels"`
	LeadingBlanks     int           `json:"leading_blanks"`
	SelectedDay       int           `json:"selected_day,omitempty"`
	ChallengeComplete bool          `json:"challenge_complete"`
	CompletionMessage string        `json:"completion_message,omitempty"`
	Days              []DayResponse `json:"days"`
}

// DayActionResponse answers a declaration or prayer.
type DayActionResponse struct {
	Day               DayResponse `json:"day"`
	ChallengeComplete bool        `json:"challenge_complete"`
	CompletionMessage string      `json:"completion_message,omitempty"`
	SelectedDay       int         `json:"selected_day,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
