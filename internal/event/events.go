package event

const (
	EventSessionCreated = "casino.session_created"
	EventCasinoPlayed   = "casino.played"
)
