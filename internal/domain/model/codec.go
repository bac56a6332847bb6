package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned when decoding an event with an unknown type tag.
var ErrUnknownEvent = errors.New("unknown event type")

// Event type tags used on the wire.
const (
	TypeLineup = "LINEUP"
	TypeGoal   = "GOAL"
	TypeCard   = "CARD"
	TypeInjury = "INJURY"
)

// wireEvent is the flat JSON envelope for every event variant.
type wireEvent struct {
	Type       string   `json:"type"`
	Minute     int      `json:"minute"`
	Team       Side     `json:"team"`
	PlayerIDs  []string `json:"player_ids,omitempty"`
	PlayerID   string   `json:"player_id,omitempty"`
	AssisterID string   `json:"assister_id,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
	GamesOut   int      `json:"games_out,omitempty"`
}

func toWire(e Event) wireEvent {
	switch v := e.(type) {
	case Lineup:
		return wireEvent{Type: TypeLineup, Team: v.Team, PlayerIDs: v.PlayerIDs}
	case Goal:
		return wireEvent{Type: TypeGoal, Minute: v.At, Team: v.Team, PlayerID: v.ScorerID, AssisterID: v.AssisterID}
	case Card:
		return wireEvent{Type: TypeCard, Minute: v.At, Team: v.Team, PlayerID: v.PlayerID, Severity: v.Severity}
	case Injury:
		return wireEvent{Type: TypeInjury, Minute: v.At, Team: v.Team, PlayerID: v.PlayerID, GamesOut: v.GamesOut}
	}
	panic(fmt.Sprintf("model: unhandled event %T", e))
}

func fromWire(w wireEvent) (Event, error) {
	switch w.Type {
	case TypeLineup:
		return Lineup{Team: w.Team, PlayerIDs: w.PlayerIDs}, nil
	case TypeGoal:
		return Goal{At: w.Minute, Team: w.Team, ScorerID: w.PlayerID, AssisterID: w.AssisterID}, nil
	case TypeCard:
		return Card{At: w.Minute, Team: w.Team, PlayerID: w.PlayerID, Severity: w.Severity}, nil
	case TypeInjury:
		return Injury{At: w.Minute, Team: w.Team, PlayerID: w.PlayerID, GamesOut: w.GamesOut}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
}

// MarshalEvents encodes an event log as a JSON array of tagged objects.
func MarshalEvents(events []Event) ([]byte, error) {
	out := make([]wireEvent, len(events))
	for i, e := range events {
		out[i] = toWire(e)
	}
	return json.Marshal(out)
}

// UnmarshalEvents decodes the output of MarshalEvents.
func UnmarshalEvents(data []byte) ([]Event, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []wireEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]Event, 0, len(raw))
	for _, w := range raw {
		e, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// EventView is the JSON read shape of a single event for API responses.
type EventView = wireEvent

// ViewEvents converts events into their JSON read shape.
func ViewEvents(events []Event) []EventView {
	out := make([]EventView, len(events))
	for i, e := range events {
		out[i] = toWire(e)
	}
	return out
}
