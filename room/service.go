package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"

	"github.com/mqy/minichat/events"
	"github.com/mqy/minichat/store"
)

const (
	JoinText  = "entered the room"
	LeaveText = "left the room"
)

type RegisterReq struct {
	Name string `json:"name" validate:"required"`
}

type SendReq struct {
	To   string     `json:"to" validate:"required"`
	Text string     `json:"text" validate:"required"`
	Kind store.Kind `json:"type" validate:"required,oneof=message private_message"`
}

// Service serves room requests against the record store.
// Check-then-act sequences are not atomic; the store rejects duplicated names.
type Service struct {
	store     store.IRoomStore
	publisher events.Publisher
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(s store.IRoomStore, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:     s,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// StatusMessage builds the system broadcast announcing that name joined or left.
func StatusMessage(name, text string, now time.Time) *store.Message {
	return &store.Message{
		From: name,
		To:   store.RoomBroadcast,
		Text: text,
		Kind: store.KindStatus,
		Time: store.FormatTime(now),
	}
}

// Post inserts m and publishes it.
func Post(ctx context.Context, s store.IRoomStore, publisher events.Publisher, m *store.Message) error {
	if err := s.InsertMessage(ctx, m); err != nil {
		return err
	}
	if err := publisher.Publish(ctx, m); err != nil {
		glog.Errorf("room: publish %s message from `%s` error: %v", m.Kind, m.From, err)
	}
	return nil
}

func (s *Service) check(req interface{}) *Error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newInvalidArgumentError(err.Error())
	}

	params := make([]string, 0, len(verrs))
	for _, v := range verrs {
		params = append(params, fmt.Sprintf("%s: failed on `%s`", v.Field(), v.Tag()))
	}
	return newInvalidArgumentError(params...)
}

// Register adds a participant and announces it to the room.
func (s *Service) Register(ctx context.Context, req *RegisterReq) (*store.Participant, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	found, err := s.store.FindParticipants(ctx, store.ParticipantFilter{Name: req.Name})
	if err != nil {
		return nil, newInternalError(err)
	}
	if len(found) > 0 {
		return nil, &Error{Code: ErrorCodeAlreadyExists, Params: []string{"name: already taken"}}
	}

	now := s.now()
	p := &store.Participant{Name: req.Name, LastHeartbeat: store.NowMillis(now)}
	if err := s.store.InsertParticipant(ctx, p); err != nil {
		if s.store.IsDupKeyError(err) {
			return nil, &Error{Code: ErrorCodeAlreadyExists, Params: []string{"name: already taken"}}
		}
		return nil, newInternalError(err)
	}

	if err := Post(ctx, s.store, s.publisher, StatusMessage(p.Name, JoinText, now)); err != nil {
		return nil, newInternalError(err)
	}
	glog.V(5).Infof("room: `%s` registered, id: %s", p.Name, p.ID)
	return p, nil
}

// Participants lists every stored participant.
func (s *Service) Participants(ctx context.Context) ([]*store.Participant, error) {
	out, err := s.store.FindParticipants(ctx, store.ParticipantFilter{})
	if err != nil {
		return nil, newInternalError(err)
	}
	if out == nil {
		out = []*store.Participant{}
	}
	return out, nil
}

// Heartbeat refreshes the last heartbeat of the named participant.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	if name == "" {
		return &Error{Code: ErrorCodeNotFound, Params: []string{"user: empty"}}
	}

	found, err := s.store.FindParticipants(ctx, store.ParticipantFilter{Name: name})
	if err != nil {
		return newInternalError(err)
	}
	if len(found) == 0 {
		return &Error{Code: ErrorCodeNotFound, Params: []string{"user: not a participant"}}
	}

	if err := s.store.UpdateHeartbeat(ctx, found[0].ID, store.NowMillis(s.now())); err != nil {
		return newInternalError(err)
	}
	return nil
}

// Send posts a message from an active participant.
func (s *Service) Send(ctx context.Context, from string, req *SendReq) (*store.Message, error) {
	if from == "" {
		return nil, &Error{Code: ErrorCodeUnauthenticated, Params: []string{"user: empty"}}
	}

	found, err := s.store.FindParticipants(ctx, store.ParticipantFilter{Name: from})
	if err != nil {
		return nil, newInternalError(err)
	}
	if len(found) == 0 {
		return nil, &Error{Code: ErrorCodeUnauthenticated, Params: []string{"user: not a participant"}}
	}

	if err := s.check(req); err != nil {
		return nil, err
	}

	m := &store.Message{
		From: from,
		To:   req.To,
		Text: req.Text,
		Kind: req.Kind,
		Time: store.FormatTime(s.now()),
	}
	if err := Post(ctx, s.store, s.publisher, m); err != nil {
		return nil, newInternalError(err)
	}
	return m, nil
}

// Messages returns the last `limit` messages visible to requester, oldest first.
func (s *Service) Messages(ctx context.Context, requester, rawLimit string) ([]*store.Message, error) {
	limit, ok := ParseLimit(rawLimit)
	if !ok || limit == 0 {
		return []*store.Message{}, nil
	}

	all, err := s.store.FindMessages(ctx)
	if err != nil {
		return nil, newInternalError(err)
	}
	return FilterVisible(all, requester, limit), nil
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if err := s.store.DeleteMessage(ctx, id); err != nil {
		return newInternalError(err)
	}
	return nil
}

func (s *Service) DeleteParticipant(ctx context.Context, id string) error {
	if err := s.store.DeleteParticipant(ctx, id); err != nil {
		return newInternalError(err)
	}
	return nil
}
