package tagdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sqlite3 "modernc.org/sqlite/lib"
)

// DB runs generic table operations against one SQLite file. Every
// operation opens its own session and closes it before returning.
// Writers are serialized; readers run concurrently with each other.
type DB struct {
	path        string
	busyTimeout time.Duration
	logger      *Logger
	log         *MessageLog

	mu sync.RWMutex

	stateMu      sync.Mutex
	code         int
	lastInsertID int64
}

// Open resolves the database path from cfg and records whether the file
// exists. A missing file is not an error; the engine creates it on first
// use.
func Open(cfg Config) (*DB, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	path, err := cfg.DatabasePath()
	if err == nil {
		path, err = filepath.Abs(path)
	}
	if err != nil {
		return nil, fmt.Errorf("Unable to resolve database path: %w", err)
	}

	logger := NewLogger(level, cfg.LogOutput)
	d := &DB{
		path:        path,
		busyTimeout: cfg.BusyTimeout,
		logger:      logger,
		log:         newMessageLog(logger),
	}

	if _, err := os.Stat(path); err == nil {
		d.log.Info("database file: %s", path)
	} else {
		d.log.Info("database file not found!")
	}

	return d, nil
}

// OpenPath opens the database at path with the default config
func OpenPath(path string) (*DB, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	return Open(cfg)
}

func (d *DB) Path() string {
	return d.path
}

// Messages returns every outcome message recorded so far, oldest first
func (d *DB) Messages() []string {
	return d.log.Messages()
}

// Code returns the last SQLite result code, 0 when the last engine call
// succeeded.
func (d *DB) Code() int {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.code
}

// LastInsertID returns the row id assigned by the last successful insert
func (d *DB) LastInsertID() int64 {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.lastInsertID
}

func (d *DB) setCode(err error) {
	d.setCodeValue(resultCode(err))
}

func (d *DB) setCodeValue(code int) {
	d.stateMu.Lock()
	d.code = code
	d.stateMu.Unlock()
}

func (d *DB) setLastInsertID(id int64) {
	d.stateMu.Lock()
	d.lastInsertID = id
	d.stateMu.Unlock()
}

// dsn returns path as a file: URI so that ? and # in the path are escaped
// instead of starting the query.
func (d *DB) dsn() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(d.path)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	if d.busyTimeout > 0 {
		u.RawQuery = fmt.Sprintf("_pragma=busy_timeout(%d)", d.busyTimeout.Milliseconds())
	}

	return u.String()
}

// affectedRows reads the counters of a finished statement
func affectedRows(res sql.Result) (int64, int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrExecution, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return n, 0, fmt.Errorf("%w: %s", ErrExecution, err)
	}

	return n, id, nil
}

// CreateTables runs CREATE TABLE IF NOT EXISTS for each spec, such as
// "users (id INTEGER PRIMARY KEY, name TEXT)". A failing spec does not stop
// the others; all failures are returned joined.
func (d *DB) CreateTables(ctx context.Context, specs []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var errs []error
	for _, spec := range specs {
		stmt, err := newCreateTableStatement(spec)
		if err == nil {
			_, err = s.exec(ctx, stmt)
		}

		if err != nil {
			d.log.Error("DB CREATE FAILED: %s", spec)
			errs = append(errs, fmt.Errorf("create %q: %w", spec, err))
			continue
		}

		d.logger.Debug("table %s ready", stmt.name)
	}

	return errors.Join(errs...)
}

// DropTables runs DROP TABLE IF EXISTS for each name
func (d *DB) DropTables(ctx context.Context, names []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var errs []error
	for _, name := range names {
		stmt, err := newDropTableStatement(name)
		if err == nil {
			_, err = s.exec(ctx, stmt)
		}

		if err != nil {
			d.log.Error("DB DROP FAILED: %s", name)
			errs = append(errs, fmt.Errorf("drop %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// Insert inserts each row of values into columns of table. Rows are
// independent: a row that fails to bind or execute is skipped and the
// rest are still inserted. The count of inserted rows is returned along
// with the joined row errors.
func (d *DB) Insert(ctx context.Context, table string, columns []string, rows [][]Value) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.insert(ctx, table, columns, rows)
}

func (d *DB) insert(ctx context.Context, table string, columns []string, rows [][]Value) (int64, error) {
	stmt, err := newInsertStatement(table, columns)
	if err != nil {
		d.log.Error("database insert: %s", err)
		return 0, err
	}

	s, err := d.openSession(ctx)
	if err != nil {
		return 0, err
	}
	defer s.close()

	p, err := s.prepare(ctx, stmt)
	if err != nil {
		d.log.Error("database insert: query preparation error!")
		return 0, err
	}
	defer p.Close()

	var count int64
	var errs []error
	for i, row := range rows {
		args, err := bindRow(len(stmt.columns), row)
		if err != nil {
			d.setCodeValue(sqlite3.SQLITE_MISMATCH)
			d.log.Error("database insert: bind error! row %d: %s", i+1, err)
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}

		res, err := p.ExecContext(ctx, args...)
		d.setCode(err)
		if err != nil {
			d.log.Error("database insert: execution error! row %d: %s", i+1, err)
			errs = append(errs, fmt.Errorf("row %d: %w: %s", i+1, ErrExecution, err))
			continue
		}

		n, id, err := affectedRows(res)
		if err != nil {
			d.setCode(err)
			d.log.Error("database insert: execution error! row %d: %s", i+1, err)
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		count += n
		d.setLastInsertID(id)
		d.log.Info("database insert: data inserted at ID: %d", id)
	}

	return count, errors.Join(errs...)
}

// Update sets columns to row on every record of table matching conds.
// When no record matches, row is inserted instead and the insert count is
// returned. Conditions that filter down to nothing fail with
// ErrEmptyCondition; an update never runs without a WHERE clause.
func (d *DB) Update(ctx context.Context, table string, columns []string, row []Value, conds []string, conj Conjunction) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	where := ParseConditions(conds, conj)
	n, err := d.modify(ctx, table, columns, row, where, false)
	if err != nil || n > 0 {
		return n, err
	}

	return d.insert(ctx, table, columns, [][]Value{row})
}

// SetValue updates a single column of the records matching cond, such as
// "id=1", inserting when nothing matches.
func (d *DB) SetValue(ctx context.Context, table, column string, v Value, cond string) (int64, error) {
	return d.Update(ctx, table, []string{column}, []Value{v}, []string{cond}, And)
}

// Delete removes the records of table matching conds. Like Update it
// refuses to run without at least one valid condition.
func (d *DB) Delete(ctx context.Context, table string, conds []string, conj Conjunction) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.modify(ctx, table, nil, nil, ParseConditions(conds, conj), true)
}

// modify runs an UPDATE, or a DELETE when del is set, and returns the
// number of changed records.
func (d *DB) modify(ctx context.Context, table string, columns []string, row []Value, where Conditions, del bool) (int64, error) {
	clause := "updated!"
	if del {
		clause = "deleted!"
	}

	var stmt Statement
	var args []interface{}
	if del {
		ds, err := newDeleteStatement(table, where)
		if err != nil {
			d.log.Error("database update: %s", err)
			return 0, err
		}
		stmt = ds
	} else {
		us, err := newUpdateStatement(table, columns, where)
		if err != nil {
			d.log.Error("database update: %s", err)
			return 0, err
		}

		args, err = bindRow(len(us.columns), row)
		if err != nil {
			d.setCodeValue(sqlite3.SQLITE_MISMATCH)
			d.log.Error("database update: bind error! %s", err)
			return 0, err
		}
		stmt = us
	}
	args = append(args, where.Args()...)

	s, err := d.openSession(ctx)
	if err != nil {
		return 0, err
	}
	defer s.close()

	res, err := s.exec(ctx, stmt, args...)
	if err != nil {
		if errors.Is(err, ErrPrepare) {
			d.log.Error("database update: query preparation error!")
		} else {
			d.log.Error("database update: execution error!")
		}
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		d.setCode(err)
		d.log.Error("database update: execution error!")
		return 0, fmt.Errorf("%w: %s", ErrExecution, err)
	}

	if n > 0 {
		d.log.Info("database update: %d record(s) %s", n, clause)
	} else {
		d.log.Info("database update: record not %s", clause)
	}

	return n, nil
}

// Read returns the columns of every record of table matching conds. With
// no conds every record is returned. Each value is rendered as a string
// according to its column's tag.
func (d *DB) Read(ctx context.Context, table string, columns []ColumnSpec, conds []string, conj Conjunction) ([]Row, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	where := ParseConditions(conds, conj)
	if len(conds) > 0 && where.Len() == 0 {
		d.log.Error("database read: %s", ErrEmptyCondition)
		return nil, ErrEmptyCondition
	}

	stmt, err := newSelectStatement(table, columns, where)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			d.log.Error("database read: data type missing! %s", err)
		} else {
			d.log.Error("database read: %s", err)
		}
		return nil, err
	}

	s, err := d.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	p, err := s.prepare(ctx, stmt)
	if err != nil {
		d.log.Error("database read: error preparing query!")
		return nil, err
	}
	defer p.Close()

	rows, err := p.QueryContext(ctx, where.Args()...)
	d.setCode(err)
	if err != nil {
		d.log.Error("database read: execution error!")
		return nil, fmt.Errorf("%w: %s", ErrExecution, err)
	}
	defer rows.Close()

	raw := make([]interface{}, len(stmt.columns))
	dest := make([]interface{}, len(stmt.columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	result := []Row{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			d.log.Error("database read: execution error!")
			return nil, fmt.Errorf("%w: %s", ErrExecution, err)
		}

		row := make(Row, len(stmt.columns))
		for i, c := range stmt.columns {
			row[c.Name] = renderColumn(c.Tag, raw[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		d.setCode(err)
		d.log.Error("database read: execution error!")
		return nil, fmt.Errorf("%w: %s", ErrExecution, err)
	}

	return result, nil
}

// GetSingleValue returns column of the first record matching conds, or ""
// when nothing matches.
func (d *DB) GetSingleValue(ctx context.Context, table, column string, tag TypeTag, conds []string, conj Conjunction) (string, error) {
	rows, err := d.Read(ctx, table, []ColumnSpec{{Tag: tag, Name: column}}, conds, conj)
	if err != nil || len(rows) == 0 {
		return "", err
	}

	return rows[0][strings.TrimSpace(column)], nil
}

// Tables lists the user tables in the database
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.Read(ctx, "sqlite_master", []ColumnSpec{{Tag: Text, Name: "name"}}, []string{"type=table"}, And)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, r := range rows {
		if !strings.HasPrefix(r["name"], "sqlite_") {
			names = append(names, r["name"])
		}
	}

	return names, nil
}
