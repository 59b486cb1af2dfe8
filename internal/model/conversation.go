package model

import "time"

// Intent is the routing class of an incoming message.
type Intent string

const (
	IntentForecast Intent = "forecast"
	IntentGeneral  Intent = "general"
)

// Reply is the single text answer to one incoming message.
type Reply struct {
	Text    string
	Elapsed time.Duration
}

// Event is one inbound conversational message.
type Event struct {
	ChatID int64
	Text   string
}
