/*
store.go - Persistence contracts for rooms, transactions, and users

PURPOSE:
  Defines the storage interfaces the service depends on. Two distinct
  mutation contracts live here, and the distinction matters:

  APPEND-ONLY (AppendComment, AppendTransaction):
    No read-before-write. Safe under concurrent appends from any number
    of sessions; the store just inserts.

  READ-MODIFY-WRITE (UpdateRoom, RecordPayment):
    The caller passes the version it read; the store applies the write
    only if the row still carries that version, bumping it on success and
    returning ErrConcurrentModification otherwise. There is no automatic
    retry loop anywhere - contention is expected to be near zero (one
    creator acts at a time) and a lost race surfaces to the caller.

IMPLEMENTATIONS:
  - room/store:   In-memory, for tests and dev servers
  - store/sqlite: SQLite with WAL, the production store
*/
package room

import "context"

// RoomStore persists saving rooms.
type RoomStore interface {
	// CreateRoom stores a new room atomically with all of its
	// participants and zero-balance payments.
	CreateRoom(ctx context.Context, r *SavingRoom) error

	// GetRoom loads a full room. Returns ErrRoomNotFound when absent.
	GetRoom(ctx context.Context, id string) (*SavingRoom, error)

	// ListRoomsByUser returns every room the user participates in,
	// newest first.
	ListRoomsByUser(ctx context.Context, userID string) ([]*SavingRoom, error)

	// UpdateRoom replaces the room's mutable fields (name, goal,
	// participant set, payments, total amount) if the stored version
	// still equals expectedVersion. Compare-and-swap; no retry.
	UpdateRoom(ctx context.Context, r *SavingRoom, expectedVersion int64) error

	// RecordPayment atomically applies updated payment records and
	// appends the paired audit transaction, guarded by the same
	// version check as UpdateRoom.
	RecordPayment(ctx context.Context, roomID string, expectedVersion int64, payments []ParticipantPayment, tx Transaction) error

	// AppendComment appends to the discussion thread. Append-only:
	// no version check needed, concurrent appends all land.
	AppendComment(ctx context.Context, roomID string, c Comment) error

	// DeleteRoom removes the room and its dependents. Terminal.
	DeleteRoom(ctx context.Context, id string) error
}

// TransactionStore persists individual ledger entries.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, tx Transaction) error
	TransactionsByRoom(ctx context.Context, roomID string) ([]Transaction, error)
	TransactionsByUser(ctx context.Context, userID string) ([]Transaction, error)
}

// UserStore is the user directory backing participant selection.
type UserStore interface {
	PutUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Store is the full persistence surface the service requires.
type Store interface {
	RoomStore
	TransactionStore
	UserStore
}
