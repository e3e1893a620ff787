package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("not found")

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
