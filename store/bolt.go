package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.etcd.io/bbolt"
)

const DriverBolt = "bolt"

var (
	participantsBucket = []byte("participants")      // id -> json
	namesBucket        = []byte("participant_names") // name -> id
	messagesBucket     = []byte("messages")          // seq -> json
	messageIdsBucket   = []byte("message_ids")       // id -> seq
)

// boltStore implements `IRoomStore` on a bbolt file.
// Messages are keyed by the bucket sequence, so cursor order is insertion order.
type boltStore struct {
	db *bbolt.DB
}

func OpenBolt(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt file `%s`: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{participantsBucket, namesBucket, messagesBucket, messageIdsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *boltStore) FindParticipants(ctx context.Context, f ParticipantFilter) ([]*Participant, error) {
	var out []*Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(participantsBucket)
		if f.ID != "" {
			v := b.Get([]byte(f.ID))
			if v == nil {
				return nil
			}
			var p Participant
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if f.match(&p) {
				out = append(out, &p)
			}
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var p Participant
			if err := json.Unmarshal(v, &p); err != nil {
				glog.Errorf("bolt: bad participant record `%s`: %v", k, err)
				return err
			}
			if f.match(&p) {
				out = append(out, &p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *boltStore) InsertParticipant(ctx context.Context, p *Participant) error {
	id := newID()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		names := tx.Bucket(namesBucket)
		if names.Get([]byte(p.Name)) != nil {
			return ErrDuplicate
		}

		rec := *p
		rec.ID = id
		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket(participantsBucket).Put([]byte(id), data); err != nil {
			return err
		}
		return names.Put([]byte(p.Name), []byte(id))
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicate) {
			glog.Errorf("bolt: insert participant err: %v", err)
		}
		return err
	}
	p.ID = id
	return nil
}

func (s *boltStore) UpdateHeartbeat(ctx context.Context, id string, lastHeartbeat int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(participantsBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		var p Participant
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		p.LastHeartbeat = lastHeartbeat
		data, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *boltStore) DeleteParticipant(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(participantsBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		var p Participant
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		if err := tx.Bucket(namesBucket).Delete([]byte(p.Name)); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

func (s *boltStore) FindMessages(ctx context.Context) ([]*Message, error) {
	var out []*Message
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(messagesBucket).ForEach(func(k, v []byte) error {
			var m Message
			if err := json.Unmarshal(v, &m); err != nil {
				glog.Errorf("bolt: bad message record, seq: %d, err: %v", binary.BigEndian.Uint64(k), err)
				return err
			}
			out = append(out, &m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *boltStore) InsertMessage(ctx context.Context, m *Message) error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: `%s`", ErrInvalidKind, m.Kind)
	}
	id := newID()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(messagesBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		rec := *m
		rec.ID = id
		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := b.Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(messageIdsBucket).Put([]byte(id), key)
	})
	if err != nil {
		glog.Errorf("bolt: insert message err: %v", err)
		return err
	}
	m.ID = id
	return nil
}

func (s *boltStore) DeleteMessage(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket(messageIdsBucket)
		key := ids.Get([]byte(id))
		if key == nil {
			return nil
		}
		// key is only valid for the life of the transaction, delete the record first.
		if err := tx.Bucket(messagesBucket).Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
}

func (s *boltStore) IsDupKeyError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
