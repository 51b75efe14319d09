// Package viewmodel turns sync outcomes into display-ready weather state and
// one-shot notification events.
package viewmodel

import (
	"time"
)

// EventKind identifies a one-shot notification.
type EventKind string

const (
	EventNoConnection EventKind = "no_connection"
	EventFailure      EventKind = "failure"
)

// Event is a notification meant to be shown exactly once.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
}

// State is the display-ready weather screen. Events holds only the
// notifications raised by the reduction that produced this value.
type State struct {
	Location      string  `json:"location"`
	Condition     string  `json:"condition"`
	Temperature   string  `json:"temperature"`
	WindSpeed     string  `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Icon          string  `json:"icon"`
	Updated       string  `json:"updated"`
	Refreshing    bool    `json:"refreshing"`
	NoData        bool    `json:"no_data"`
	Events        []Event `json:"events,omitempty"`
}

// InitialState is the state before any outcome was reduced.
func InitialState() State {
	return State{NoData: true}
}

// withoutEvents returns a copy safe to hand to late observers.
func (s State) withoutEvents() State {
	s.Events = nil
	return s
}

// Resources resolves localized strings.
type Resources interface {
	String(key string, args ...any) string
	FormatDateTime(t time.Time) string
}
