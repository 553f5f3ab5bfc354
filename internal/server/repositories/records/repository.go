// Package records is the persistence layer: users, visits and the global
// visit counter behind one contract, with one implementation per backend.
//
// Reads are fail-soft. A missing or malformed persisted value reads as its
// empty default (no users, no visits, counter 0) instead of an error; only
// transport and I/O failures are reported.
package records

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// Repository is the record store contract shared by every backend.
type Repository interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	PutUsers(ctx context.Context, users []models.User) error

	GetVisits(ctx context.Context) ([]models.Visit, error)
	PutVisits(ctx context.Context, visits []models.Visit) error

	GetCounter(ctx context.Context) (int64, error)
	PutCounter(ctx context.Context, n int64) error

	// IncrementCounter atomically adds one and returns the new value.
	IncrementCounter(ctx context.Context) (int64, error)

	Close() error
}

// VisitAppender is implemented by backends that can add one visit without
// rewriting the whole log.
type VisitAppender interface {
	AppendVisit(ctx context.Context, v models.Visit) error
}

// Backend names accepted by repomanager.Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Object names used by the document-style backends (file, S3).
const (
	usersObject  = "users.json"
	visitsObject = "visits.json"
	stateObject  = "state.json"
)

// state is the persisted form of the counter in state.json.
type state struct {
	VisitCount int64 `json:"visitCount"`
}

func decodeUsers(b []byte) []models.User {
	var users []models.User
	if len(b) == 0 || json.Unmarshal(b, &users) != nil || users == nil {
		return []models.User{}
	}
	return users
}

func decodeVisits(b []byte) []models.Visit {
	var visits []models.Visit
	if len(b) == 0 || json.Unmarshal(b, &visits) != nil || visits == nil {
		return []models.Visit{}
	}
	return visits
}

func decodeState(b []byte) int64 {
	var s state
	if len(b) == 0 || json.Unmarshal(b, &s) != nil {
		return 0
	}
	return s.VisitCount
}

// parseCount reads a counter stored as decimal text; anything else is 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// marshalIndent writes documents the way the flat-file server always did:
// two-space indentation.
func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func nonNilUsers(u []models.User) []models.User {
	if u == nil {
		return []models.User{}
	}
	return u
}

func nonNilVisits(v []models.Visit) []models.Visit {
	if v == nil {
		return []models.Visit{}
	}
	return v
}
