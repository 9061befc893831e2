package models

import (
	"encoding/json"
	"time"
)

// Vote records one user's vote for an event.
type Vote struct {
	UserID string `json:"userId"`
}

// Registration records one user's attendance registration for an event.
type Registration struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// VoteList is a vote set that tolerates corrupt on-disk values: anything that
// is not a JSON array decodes to nil, which Repair normalizes to empty.
type VoteList []Vote

// UnmarshalJSON decodes a JSON array of votes. Null, missing, or non-array
// values decode to nil instead of failing the whole document.
func (l *VoteList) UnmarshalJSON(data []byte) error {
	var votes []Vote
	if err := json.Unmarshal(data, &votes); err != nil {
		*l = nil
		return nil
	}
	*l = votes
	return nil
}

// MarshalJSON always emits a JSON array, never null.
func (l VoteList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Vote(l))
}

// Has reports whether userID has already voted.
func (l VoteList) Has(userID string) bool {
	for _, v := range l {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

// RegistrationList is a registration set with the same corruption tolerance
// as VoteList.
type RegistrationList []Registration

func (l *RegistrationList) UnmarshalJSON(data []byte) error {
	var regs []Registration
	if err := json.Unmarshal(data, &regs); err != nil {
		*l = nil
		return nil
	}
	*l = regs
	return nil
}

// MarshalJSON always emits a JSON array, never null.
func (l RegistrationList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Registration(l))
}

// Has reports whether userID is already registered.
func (l RegistrationList) Has(userID string) bool {
	for _, r := range l {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Event represents a calendar event.
type Event struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Date          string           `json:"date"`
	Time          string           `json:"time"`
	Location      string           `json:"location"`
	CreatedBy     string           `json:"createdBy,omitempty"`
	Votes         VoteList         `json:"votes"`
	Registrations RegistrationList `json:"registrations"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Repair normalizes missing vote/registration lists to empty and reports
// whether anything was fixed. Every read path calls this before serving a
// record, so the lists are arrays from the caller's perspective regardless of
// on-disk state.
func (e *Event) Repair() bool {
	repaired := false
	if e.Votes == nil {
		e.Votes = VoteList{}
		repaired = true
	}
	if e.Registrations == nil {
		e.Registrations = RegistrationList{}
		repaired = true
	}
	return repaired
}

// EventView is the API shape of an event with derived counts.
type EventView struct {
	Event
	VoteCount         int `json:"voteCount"`
	RegistrationCount int `json:"registrationCount"`
}

// View repairs the event and returns its API shape.
func (e Event) View() EventView {
	e.Repair()
	return EventView{
		Event:             e,
		VoteCount:         len(e.Votes),
		RegistrationCount: len(e.Registrations),
	}
}
