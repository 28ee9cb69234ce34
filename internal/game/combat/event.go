package combat

import (
	"context"
	"time"
)

// EventKind classifies session events.
type EventKind string

const (
	EventRoundStarted   EventKind = "round_started"
	EventTurnStarted    EventKind = "turn_started"
	EventAttack         EventKind = "attack"
	EventFled           EventKind = "fled"
	EventFleeFailed     EventKind = "flee_failed"
	EventDefended       EventKind = "defended"
	EventPotion         EventKind = "potion"
	EventEncounterEnded EventKind = "encounter_ended"
)

// Event is one entry of an encounter's play-by-play.
type Event struct {
	EncounterID string         `json:"encounter_id"`
	Seq         int            `json:"seq"`
	Round       int            `json:"round"`
	Kind        EventKind      `json:"kind"`
	Actor       string         `json:"actor,omitempty"`
	Order       []string       `json:"order,omitempty"`
	Attack      *AttackOutcome `json:"attack,omitempty"`
	Result      Result         `json:"result,omitempty"`
	Roll        int            `json:"roll,omitempty"`
	Healed      int            `json:"healed,omitempty"`
	Text        string         `json:"text"`
	At          time.Time      `json:"at"`
}

// EventSink receives events as an encounter runs. A failing sink never
// aborts the encounter.
type EventSink interface {
	Record(ctx context.Context, e Event) error
}

// EventSinks fans events out to several sinks and returns the first error.
type EventSinks []EventSink

func (s EventSinks) Record(ctx context.Context, e Event) error {
	var first error
	for _, sink := range s {
		if err := sink.Record(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
