// Package repository defines the student record store interface and errors.
package repository

import (
	"context"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// Store provides read/write access to the raw student records.
// Implementations must guarantee roll-number uniqueness: Put upserts.
type Store interface {
	// Put inserts or replaces the record keyed by its roll number.
	// Returns true when the record was new.
	Put(ctx context.Context, rec model.StudentRecord) (bool, error)

	// Get returns the record for a roll number.
	// Returns ErrNotFound if the roll number is unknown.
	Get(ctx context.Context, rollNo string) (model.StudentRecord, error)

	// List returns a read-only snapshot of all records. Query evaluation
	// runs over such snapshots, so concurrent ingestion never shifts ranks
	// mid-request.
	List(ctx context.Context) ([]model.StudentRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
