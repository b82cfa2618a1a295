package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang/glog"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Names compare byte by byte, the default utf8mb4 collation ignores case.
var mysqlSchema = []string{
	"CREATE TABLE IF NOT EXISTS participants (" +
		"seq BIGINT NOT NULL AUTO_INCREMENT, " +
		"id VARCHAR(32) NOT NULL, " +
		"name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL, " +
		"last_heartbeat BIGINT NOT NULL, " +
		"PRIMARY KEY (seq), UNIQUE KEY uk_id (id), UNIQUE KEY uk_name (name)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS messages (" +
		"seq BIGINT NOT NULL AUTO_INCREMENT, " +
		"id VARCHAR(32) NOT NULL, " +
		"from_name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL, " +
		"to_name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL, " +
		"body TEXT NOT NULL, " +
		"kind VARCHAR(32) NOT NULL, " +
		"time_of_day VARCHAR(16) NOT NULL, " +
		"PRIMARY KEY (seq), UNIQUE KEY uk_id (id)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
}

var sqliteSchema = []string{
	"CREATE TABLE IF NOT EXISTS participants (" +
		"seq INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"id TEXT NOT NULL UNIQUE, " +
		"name TEXT NOT NULL UNIQUE, " +
		"last_heartbeat INTEGER NOT NULL)",
	"CREATE TABLE IF NOT EXISTS messages (" +
		"seq INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"id TEXT NOT NULL UNIQUE, " +
		"from_name TEXT NOT NULL, " +
		"to_name TEXT NOT NULL, " +
		"body TEXT NOT NULL, " +
		"kind TEXT NOT NULL, " +
		"time_of_day TEXT NOT NULL)",
}

const (
	findParticipantsSQL = "SELECT id, name, last_heartbeat FROM participants " +
		"WHERE (? = '' OR id = ?) AND (? = '' OR name = ?) ORDER BY seq"
	insertParticipantSQL = "INSERT INTO participants (id, name, last_heartbeat) VALUES (?,?,?)"
	updateHeartbeatSQL   = "UPDATE participants SET last_heartbeat = ? WHERE id = ?"
	deleteParticipantSQL = "DELETE FROM participants WHERE id = ?"
)

const (
	findMessagesSQL  = "SELECT id, from_name, to_name, body, kind, time_of_day FROM messages ORDER BY seq"
	insertMessageSQL = "INSERT INTO messages (id, from_name, to_name, body, kind, time_of_day) VALUES (?,?,?,?,?,?)"
	deleteMessageSQL = "DELETE FROM messages WHERE id = ?"
)

// sqlStore implements `IRoomStore` on MySQL or SQLite.
type sqlStore struct {
	*sql.DB
	driver string
	txOpts *sql.TxOptions
}

// OpenSQL connects to the database and creates missing tables.
func OpenSQL(driver, dsn string) (*sqlStore, error) {
	var schema []string
	var txOpts *sql.TxOptions

	switch driver {
	case DriverMySQL:
		schema = mysqlSchema
		txOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return nil, fmt.Errorf("unsupported sql driver `%s`", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open error, driver: %s, err: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection: an in-memory database lives in its connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxLifetime(time.Minute * 3)
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	return &sqlStore{DB: db, driver: driver, txOpts: txOpts}, nil
}

func (s *sqlStore) withTx(ctx context.Context, exec func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, s.txOpts)
	if err != nil {
		return err
	}

	if err := exec(ctx, tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			glog.Errorf("failed to rollback: %v", err2)
		}
		return err
	}

	return tx.Commit()
}

func (s *sqlStore) FindParticipants(ctx context.Context, f ParticipantFilter) ([]*Participant, error) {
	var out []*Participant
	if err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, findParticipantsSQL, f.ID, f.ID, f.Name, f.Name)
		if err != nil {
			glog.Errorf("find participants query err: %v", err)
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p Participant
			if err := rows.Scan(&p.ID, &p.Name, &p.LastHeartbeat); err != nil {
				glog.Errorf("find participants scan err: %v", err)
				return err
			}
			out = append(out, &p)
		}
		return rows.Err()
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlStore) InsertParticipant(ctx context.Context, p *Participant) error {
	id := newID()
	if _, err := s.ExecContext(ctx, insertParticipantSQL, id, p.Name, p.LastHeartbeat); err != nil {
		if s.IsDupKeyError(err) {
			return ErrDuplicate
		}
		glog.Errorf("insert participant exec err: %v", err)
		return err
	}
	p.ID = id
	return nil
}

func (s *sqlStore) UpdateHeartbeat(ctx context.Context, id string, lastHeartbeat int64) error {
	if _, err := s.ExecContext(ctx, updateHeartbeatSQL, lastHeartbeat, id); err != nil {
		glog.Errorf("update heartbeat exec err: %v", err)
		return err
	}
	return nil
}

func (s *sqlStore) DeleteParticipant(ctx context.Context, id string) error {
	if _, err := s.ExecContext(ctx, deleteParticipantSQL, id); err != nil {
		glog.Errorf("delete participant exec err: %v", err)
		return err
	}
	return nil
}

func (s *sqlStore) FindMessages(ctx context.Context) ([]*Message, error) {
	var out []*Message
	if err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, findMessagesSQL)
		if err != nil {
			glog.Errorf("find messages query err: %v", err)
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m Message
			var kind string
			if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &kind, &m.Time); err != nil {
				glog.Errorf("find messages scan err: %v", err)
				return err
			}
			m.Kind = Kind(kind)
			out = append(out, &m)
		}
		return rows.Err()
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqlStore) InsertMessage(ctx context.Context, m *Message) error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: `%s`", ErrInvalidKind, m.Kind)
	}
	id := newID()
	if _, err := s.ExecContext(ctx, insertMessageSQL, id, m.From, m.To, m.Text, string(m.Kind), m.Time); err != nil {
		glog.Errorf("insert message exec err: %v", err)
		return err
	}
	m.ID = id
	return nil
}

func (s *sqlStore) DeleteMessage(ctx context.Context, id string) error {
	if _, err := s.ExecContext(ctx, deleteMessageSQL, id); err != nil {
		glog.Errorf("delete message exec err: %v", err)
		return err
	}
	return nil
}

func (s *sqlStore) IsDupKeyError(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
