package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]IRoomStore {
	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "room.db"))
	require.NoError(t, err)

	lite, err := OpenSQL(DriverSQLite, "file::memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bolt.Close()
		_ = lite.Close()
	})
	return map[string]IRoomStore{
		DriverBolt:   bolt,
		DriverSQLite: lite,
	}
}

func TestParticipants(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			alice := &Participant{Name: "Alice", LastHeartbeat: 1000}
			req.NoError(s.InsertParticipant(ctx, alice))
			req.NotEmpty(alice.ID)

			bob := &Participant{Name: "Bob", LastHeartbeat: 2000}
			req.NoError(s.InsertParticipant(ctx, bob))
			req.NotEqual(alice.ID, bob.ID)

			err := s.InsertParticipant(ctx, &Participant{Name: "Alice", LastHeartbeat: 3000})
			req.ErrorIs(err, ErrDuplicate)
			req.True(s.IsDupKeyError(err))

			// names are case sensitive.
			lower := &Participant{Name: "alice", LastHeartbeat: 3000}
			req.NoError(s.InsertParticipant(ctx, lower))
			found, err := s.FindParticipants(ctx, ParticipantFilter{Name: "alice"})
			req.NoError(err)
			req.Equal([]*Participant{lower}, found)
			req.NoError(s.DeleteParticipant(ctx, lower.ID))

			all, err := s.FindParticipants(ctx, ParticipantFilter{})
			req.NoError(err)
			req.Len(all, 2)

			found, err = s.FindParticipants(ctx, ParticipantFilter{Name: "Bob"})
			req.NoError(err)
			req.Equal([]*Participant{bob}, found)

			found, err = s.FindParticipants(ctx, ParticipantFilter{ID: alice.ID})
			req.NoError(err)
			req.Equal([]*Participant{alice}, found)

			found, err = s.FindParticipants(ctx, ParticipantFilter{ID: alice.ID, Name: "Bob"})
			req.NoError(err)
			req.Empty(found)

			req.NoError(s.UpdateHeartbeat(ctx, alice.ID, 5000))
			found, err = s.FindParticipants(ctx, ParticipantFilter{Name: "Alice"})
			req.NoError(err)
			req.Len(found, 1)
			req.EqualValues(5000, found[0].LastHeartbeat)

			req.NoError(s.DeleteParticipant(ctx, alice.ID))
			req.NoError(s.DeleteParticipant(ctx, "does-not-exist"))
			req.NoError(s.UpdateHeartbeat(ctx, "does-not-exist", 1))

			found, err = s.FindParticipants(ctx, ParticipantFilter{Name: "Alice"})
			req.NoError(err)
			req.Empty(found)

			// name is free again once the holder is gone.
			req.NoError(s.InsertParticipant(ctx, &Participant{Name: "Alice", LastHeartbeat: 6000}))
		})
	}
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			var inserted []*Message
			for _, text := range []string{"one", "two", "three", "four"} {
				m := &Message{From: "Alice", To: RoomBroadcast, Text: text, Kind: KindMessage, Time: "10/00/00"}
				req.NoError(s.InsertMessage(ctx, m))
				req.NotEmpty(m.ID)
				inserted = append(inserted, m)
			}

			err := s.InsertMessage(ctx, &Message{From: "Alice", To: RoomBroadcast, Text: "?", Kind: "shout", Time: "10/00/00"})
			req.ErrorIs(err, ErrInvalidKind)

			got, err := s.FindMessages(ctx)
			req.NoError(err)
			req.Equal(inserted, got)

			req.NoError(s.DeleteMessage(ctx, inserted[1].ID))
			req.NoError(s.DeleteMessage(ctx, "does-not-exist"))

			got, err = s.FindMessages(ctx)
			req.NoError(err)
			req.Equal([]*Message{inserted[0], inserted[2], inserted[3]}, got)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mongodb", "whatever")
	assert.Error(t, err)
}

func TestElapsedSeconds(t *testing.T) {
	assert.EqualValues(t, 10, ElapsedSeconds(20_999, 10_000))
	assert.EqualValues(t, 11, ElapsedSeconds(21_000, 10_999))
	assert.EqualValues(t, 0, ElapsedSeconds(10_999, 10_000))
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 3, 0, time.Local)
	assert.Equal(t, "07/05/03", FormatTime(at))
	assert.EqualValues(t, at.Unix()*1000, NowMillis(at))
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindMessage.Valid())
	assert.True(t, KindPrivateMessage.Valid())
	assert.True(t, KindStatus.Valid())
	assert.False(t, Kind("shout").Valid())
}
