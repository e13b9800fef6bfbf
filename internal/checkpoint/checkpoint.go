// Package checkpoint persists the last item identifier a transfer inserted successfully.
//
// A [Store] holds at most one identifier. The transfer engine reads it once at start to compute the resume point,
// overwrites it after every confirmed insertion and clears it once the planned batch is fully transferred.
//
// [FileStore] keeps the identifier in a plain-text file with no delimiter or metadata, so a missing file means
// "no checkpoint". The database-backed implementation lives in the repositories package.
package checkpoint

import "context"

// Store is a durable single-value record of transfer progress.
type Store interface {
	// Read returns the stored identifier. ok is false when no checkpoint exists.
	Read(ctx context.Context) (id string, ok bool, err error)

	// Write overwrites the record with id.
	Write(ctx context.Context, id string) error

	// Clear removes the record. Clearing an absent record is not an error.
	Clear(ctx context.Context) error
}

// Locker is implemented by stores that can guard against two processes driving the same checkpoint.
type Locker interface {
	Lock() error
	Unlock() error
}
