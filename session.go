package tagdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const driverName = "sqlite"

// session is one connection owned by a single operation. It is opened at
// the start of the operation and closed before the operation returns.
type session struct {
	id   string
	conn *sql.DB
	db   *DB
}

func (d *DB) openSession(ctx context.Context) (*session, error) {
	conn, err := sql.Open(driverName, d.dsn())
	if err != nil {
		d.setCode(err)
		d.log.Error("database open failed: %s", err)
		return nil, fmt.Errorf("%w: %s", ErrConnection, err)
	}
	conn.SetMaxOpenConns(1)

	// sql.Open is lazy; ping to make the engine open the file now
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		d.setCode(err)
		d.log.Error("database open failed: %s", err)
		return nil, fmt.Errorf("%w: %s", ErrConnection, err)
	}
	d.setCode(nil)

	s := &session{id: uuid.NewString(), conn: conn, db: d}
	d.logger.Debug("session %s opened %s", s.id, d.path)
	return s, nil
}

func (s *session) close() {
	if err := s.conn.Close(); err != nil {
		s.db.logger.Warning("session %s close: %s", s.id, err)
		return
	}

	s.db.logger.Debug("session %s closed", s.id)
}

func (s *session) prepare(ctx context.Context, stmt Statement) (*sql.Stmt, error) {
	code := stmt.GenerateCode()
	s.db.logger.Debug("session %s prepare: %s", s.id, code)

	p, err := s.conn.PrepareContext(ctx, code)
	s.db.setCode(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrepare, err)
	}

	return p, nil
}

// exec prepares and runs a statement that returns no rows
func (s *session) exec(ctx context.Context, stmt Statement, args ...interface{}) (sql.Result, error) {
	p, err := s.prepare(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	res, err := p.ExecContext(ctx, args...)
	s.db.setCode(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExecution, err)
	}

	return res, nil
}

// resultCode extracts the SQLite result code carried by err
func resultCode(err error) int {
	if err == nil {
		return sqlite3.SQLITE_OK
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}

	return sqlite3.SQLITE_ERROR
}
