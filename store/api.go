//go:generate mockgen -source=api.go -destination=mock/mock_api.go -package=mock

package store

import (
	"context"
	"errors"
)

// RoomBroadcast is the recipient name that addresses every participant.
const RoomBroadcast = "Todos"

type Kind string

const (
	KindMessage        Kind = "message"
	KindPrivateMessage Kind = "private_message"
	KindStatus         Kind = "status"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMessage, KindPrivateMessage, KindStatus:
		return true
	}
	return false
}

// ErrInvalidKind is returned when a message kind is none of the known kinds.
var ErrInvalidKind = errors.New("store: invalid message kind")

// ErrDuplicate is returned when an insert would break the participant name uniqueness.
var ErrDuplicate = errors.New("store: duplicate participant name")

// Participant is a registered member of the room.
type Participant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LastHeartbeat int64  `json:"lastStatus"` // unix milliseconds
}

// Message is immutable once inserted. Insertion order is the chronological order.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Kind Kind   `json:"type"`
	Time string `json:"time"` // time of day, see FormatTime.
}

// ParticipantFilter selects participants. Empty fields match everything.
type ParticipantFilter struct {
	ID   string
	Name string
}

func (f ParticipantFilter) match(p *Participant) bool {
	if f.ID != "" && f.ID != p.ID {
		return false
	}
	if f.Name != "" && f.Name != p.Name {
		return false
	}
	return true
}

type IRoomStore interface {
	// FindParticipants gets participants matching the filter.
	FindParticipants(ctx context.Context, f ParticipantFilter) ([]*Participant, error)

	// InsertParticipant assigns `p.ID` and saves it.
	// Returns ErrDuplicate if a participant with the same name exists.
	InsertParticipant(ctx context.Context, p *Participant) error

	// UpdateHeartbeat sets last heartbeat of the participant. Unknown id is a no-op.
	UpdateHeartbeat(ctx context.Context, id string, lastHeartbeat int64) error

	// DeleteParticipant deletes by id. Unknown id is a no-op.
	DeleteParticipant(ctx context.Context, id string) error

	// FindMessages gets all messages in insertion order.
	FindMessages(ctx context.Context) ([]*Message, error)

	// InsertMessage assigns `m.ID` and saves it.
	InsertMessage(ctx context.Context, m *Message) error

	// DeleteMessage deletes by id. Unknown id is a no-op.
	DeleteMessage(ctx context.Context, id string) error

	IsDupKeyError(err error) bool

	Close() error
}
