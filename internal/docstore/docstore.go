// Package docstore is the document persistence boundary: whole-document
// reads and upserts by collection and id, plus equality queries on a single
// field. Aggregates above it are always read-modify-written as a unit.
package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Store is the minimal contract the engine persists through. Put is an
// upsert that replaces the full document. Query matches documents whose
// top-level field equals value and decodes them into out, which must be a
// pointer to a slice.
type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	Query(ctx context.Context, collection, field string, value any, out any) error
	Put(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
}

// Collection names used across the service.
const (
	CollectionHabits            = "habits"
	CollectionUserStats         = "user_stats"
	CollectionChallenges        = "challenges"
	CollectionParticipants      = "challenge_participants"
	CollectionWorkoutChallenges = "workout_challenges"
	CollectionCheckIns          = "check_ins"
	CollectionFinance           = "finance_entries"
	CollectionDevices           = "devices"
)
