package sequence

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/pkg/db"
	"gorm.io/gorm"
)

// Namespace is one independent number line: the table and column the numbers
// live in, the column that partitions them, and the printed prefix. Two
// namespaces over the same table never observe each other's numbers.
type Namespace struct {
	Table     string
	Column    string
	Partition string
	Prefix    string
}

// Allocator hands out the next number in a namespace partition. Next must run
// on the same transaction that inserts the row carrying the number, so the
// scanned maximum and the insert commit or roll back together. A rolled-back
// insert releases its number for reuse; numbers freed by deletes below the
// maximum stay unused.
type Allocator interface {
	Next(ctx context.Context, tx *gorm.DB, ns Namespace, partitionID snowflake.ID) (int64, string, error)
}

type maxRowAllocator struct{}

func NewAllocator() Allocator {
	return &maxRowAllocator{}
}

// Next scans the newest numbered row in the partition under an update lock
// and returns its value plus one. An empty partition starts at 1.
func (a *maxRowAllocator) Next(ctx context.Context, tx *gorm.DB, ns Namespace, partitionID snowflake.ID) (int64, string, error) {
	var last string
	err := tx.WithContext(ctx).Raw(fmt.Sprintf(
		`SELECT %s FROM %s
		 WHERE %s = ? AND %s IS NOT NULL AND %s <> ''
		 ORDER BY id DESC
		 LIMIT 1
		 FOR UPDATE`,
		ns.Column, ns.Table, ns.Partition, ns.Column, ns.Column,
	), partitionID).Scan(&last).Error
	if err != nil {
		return 0, "", err
	}
	if last == "" {
		return 1, Format(ns.Prefix, 1), nil
	}
	seq, err := Parse(ns.Prefix, last)
	if err != nil {
		return 0, "", err
	}
	next := seq + 1
	return next, Format(ns.Prefix, next), nil
}

// Insert runs an allocate-and-insert closure, retrying when the backing
// unique index rejects the number. Two writers racing an empty partition can
// both derive the same value; the loser re-reads and lands on the next one.
func Insert(maxAttempts int, insert func() error) error {
	var last error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := insert()
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		last = err
	}
	return fmt.Errorf("sequence allocation exhausted after %d attempts: %w", maxAttempts, last)
}
