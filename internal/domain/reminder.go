package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date format used by reminder and shed entries.
const DateLayout = "2006-01-02"

// Reminder is the subset of a reminders slice entry the exporters care
// about. Entries are caller-defined JSON; unknown fields are ignored.
type Reminder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Notes string `json:"notes,omitempty"`
}

// Shed is the subset of a sheds slice entry used for placement-date events.
type Shed struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PlacementDate string `json:"placementDate,omitempty"`
}

// ParseReminders decodes a reminders slice document, tolerating a nil or
// never-written document.
func ParseReminders(value json.RawMessage) ([]Reminder, error) {
	if len(value) == 0 {
		return nil, nil
	}
	var reminders []Reminder
	if err := json.Unmarshal(value, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// ParseSheds decodes a sheds slice document.
func ParseSheds(value json.RawMessage) ([]Shed, error) {
	if len(value) == 0 {
		return nil, nil
	}
	var sheds []Shed
	if err := json.Unmarshal(value, &sheds); err != nil {
		return nil, err
	}
	return sheds, nil
}

// DueOn reports whether the reminder falls on the given day.
func (r Reminder) DueOn(day time.Time) bool {
	parsed, err := time.ParseInLocation(DateLayout, r.Date, day.Location())
	if err != nil {
		return false
	}
	y1, m1, d1 := parsed.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
