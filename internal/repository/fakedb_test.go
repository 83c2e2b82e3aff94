package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingDB is a database/sql connector that records every statement and
// answers them from canned replies matched by substring.
type recordingDB struct {
	mu         sync.Mutex
	statements []statement
	replies    []reply
}

type statement struct {
	query string
	args  []driver.Value
}

type reply struct {
	match        string
	rowsAffected int64
	columns      []string
	rows         [][]driver.Value
	err          error
}

func newRecordingDB(t *testing.T) (*gorm.DB, *recordingDB) {
	t.Helper()
	rec := &recordingDB{}
	sqlDB := sql.OpenDB(rec)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
		TranslateError:       true,
	})
	require.NoError(t, err)
	return db, rec
}

func (r *recordingDB) on(match string, rep reply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.match = match
	r.replies = append(r.replies, rep)
}

func (r *recordingDB) record(query string, args []driver.Value) reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, statement{query: query, args: args})
	for _, rep := range r.replies {
		if strings.Contains(query, rep.match) {
			return rep
		}
	}
	return reply{rowsAffected: 1}
}

// find returns the first recorded statement containing match.
func (r *recordingDB) find(t *testing.T, match string) statement {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.statements {
		if strings.Contains(st.query, match) {
			return st
		}
	}
	require.Failf(t, "statement not executed", "no statement contains %q", match)
	return statement{}
}

// order returns, for each marker, the index of the first statement that
// contains it, or -1.
func (r *recordingDB) order(markers ...string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]int, len(markers))
	for i, marker := range markers {
		result[i] = -1
		for j, st := range r.statements {
			if strings.Contains(st.query, marker) {
				result[i] = j
				break
			}
		}
	}
	return result
}

func (r *recordingDB) Connect(context.Context) (driver.Conn, error) {
	return &recordingConn{db: r}, nil
}

func (r *recordingDB) Driver() driver.Driver {
	return recordingDriver{db: r}
}

type recordingDriver struct{ db *recordingDB }

func (d recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{db: d.db}, nil }

type recordingConn struct{ db *recordingDB }

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return &recordingStmt{db: c.db, query: query}, nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	c.db.record("BEGIN", nil)
	return recordingTx{db: c.db}, nil
}

type recordingTx struct{ db *recordingDB }

func (tx recordingTx) Commit() error {
	tx.db.record("COMMIT", nil)
	return nil
}

func (tx recordingTx) Rollback() error {
	tx.db.record("ROLLBACK", nil)
	return nil
}

type recordingStmt struct {
	db    *recordingDB
	query string
}

func (s *recordingStmt) Close() error  { return nil }
func (s *recordingStmt) NumInput() int { return -1 }

func (s *recordingStmt) Exec(args []driver.Value) (driver.Result, error) {
	rep := s.db.record(s.query, args)
	if rep.err != nil {
		return nil, rep.err
	}
	return driver.RowsAffected(rep.rowsAffected), nil
}

func (s *recordingStmt) Query(args []driver.Value) (driver.Rows, error) {
	rep := s.db.record(s.query, args)
	if rep.err != nil {
		return nil, rep.err
	}
	return &cannedRows{columns: rep.columns, rows: rep.rows}, nil
}

type cannedRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *cannedRows) Columns() []string { return r.columns }
func (r *cannedRows) Close() error      { return nil }

func (r *cannedRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}
