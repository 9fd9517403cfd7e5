// Package db is the typed façade over the external graph-capable
// database (SurrealDB): connection setup, idempotent schema
// bootstrap, and one file per resource area (user, influence,
// leaderboard, activity, graph) holding the SurrealQL query strings.
package db

import (
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/mapperinfluences/backend/internal/apperror"
)

// Store wraps a live SurrealDB connection signed in as a user with
// access to the "prod" namespace/database.
type Store struct {
	conn *surrealdb.DB
}

// Open connects to surrealURL (ws:// or wss://), signs in with
// user/pass, and selects the "prod" namespace and database.
func Open(surrealURL, user, pass string) (*Store, error) {
	conn, err := surrealdb.New(surrealURL)
	if err != nil {
		return nil, fmt.Errorf("connect to surrealdb: %w", err)
	}

	if _, err := conn.Signin(map[string]interface{}{
		"user": user,
		"pass": pass,
	}); err != nil {
		return nil, fmt.Errorf("surrealdb signin: %w", err)
	}

	if _, err := conn.Use("prod", "prod"); err != nil {
		return nil, fmt.Errorf("surrealdb use ns/db: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() {
	s.conn.Close()
}

// bootstrapStatements define the fields and indexes this façade
// relies on. SurrealDB tables are schemaless by default; these
// statements are the SCHEMAFULL-adjacent guarantees (uniqueness,
// required fields) the query layer below assumes hold, executed once
// at startup before serving traffic — the same role the teacher's
// Store.Migrate() plays for a SQL store.
var bootstrapStatements = []string{
	`DEFINE FIELD IF NOT EXISTS id ON TABLE user TYPE number`,
	`DEFINE INDEX IF NOT EXISTS user_id_idx ON TABLE user COLUMNS id UNIQUE`,
	`DEFINE FIELD IF NOT EXISTS created_at ON TABLE activity TYPE datetime DEFAULT time::now()`,
	`DEFINE INDEX IF NOT EXISTS activity_created_idx ON TABLE activity COLUMNS created_at`,
	`DEFINE INDEX IF NOT EXISTS influenced_by_unique_idx ON TABLE influenced_by COLUMNS in, out UNIQUE`,
}

// Bootstrap executes the idempotent schema-definition statements.
// Safe to call on every startup.
func (s *Store) Bootstrap() error {
	for _, stmt := range bootstrapStatements {
		if _, err := s.conn.Query(stmt, nil); err != nil {
			return apperror.Internal(fmt.Errorf("bootstrap statement %q: %w", stmt, err))
		}
	}
	return nil
}

// userThing builds the record id for a numeric user id.
func userThing(id uint32) string {
	return fmt.Sprintf("user:%d", id)
}

// unmarshalRows unmarshals a SurrealDB multi-row query result into
// a slice of T.
func unmarshalRows[T any](data interface{}) ([]T, error) {
	result, err := surrealdb.SmartUnmarshal[[]T](data, nil)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return result, nil
}

// unmarshalOne unmarshals a SurrealDB query result expected to
// contain exactly one row, returning notFound if it is empty.
func unmarshalOne[T any](data interface{}, notFound error) (T, error) {
	var zero T
	rows, err := unmarshalRows[T](data)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, notFound
	}
	return rows[0], nil
}
