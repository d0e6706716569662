package sync

// EventType identifies one orchestrator progress event.
type EventType string

const (
	EventPhaseStart   EventType = "phase_start"
	EventPageUpserted EventType = "page_upserted"
	EventGuardSkip    EventType = "guard_skip"
	EventPhaseDone    EventType = "phase_done"
	EventGameDone     EventType = "game_done"
	EventError        EventType = "error"
	EventComplete     EventType = "complete"
)

// Event is one progress notification emitted by a running sync. Consumers are
// optional; events are dropped rather than ever blocking the run.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Game      string    `json:"game,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Parent    string    `json:"parent,omitempty"`
	Written   int64     `json:"written,omitempty"`
	Processed int       `json:"processed,omitempty"`
	Message   string    `json:"message,omitempty"`
}
