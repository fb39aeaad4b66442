/*
Package sqlite provides the SQLite-backed implementation of room.Store.

PURPOSE:
  Persists saving rooms, their participants/payments/comments, individual
  transactions, and the user directory. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  rooms:              Aggregate row, carries the version used for guarded writes
  room_participants:  Membership, ordered by position
  room_payments:      One row per participant (amount_due, amount_paid)
  room_comments:      Discussion thread, INSERT only
  transactions:       Income/expense entries plus room payment audit records
  users:              Directory for participant selection

MUTATION CONTRACTS:
  UpdateRoom and RecordPayment run inside a sql transaction and guard the
  write with `WHERE id = ? AND version = ?`. Zero affected rows means the
  caller lost a race and gets room.ErrConcurrentModification. Comments and
  transactions are plain inserts, append-only needs no guard.

WAL MODE:
  The database is opened with WAL so readers don't block the single
  writer, and with foreign keys on so deleting a room cascades to its
  dependent rows.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - room/store.go: Interface definitions
  - room/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/room"
)

// Store implements room.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time; serialize at the pool level
	// instead of bubbling SQLITE_BUSY up to callers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		creator_id TEXT NOT NULL,
		goal TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL,
		payment_period TEXT NOT NULL,
		created_at TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS room_participants (
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		PRIMARY KEY (room_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_participants_user
		ON room_participants(user_id);

	CREATE TABLE IF NOT EXISTS room_payments (
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		amount_due TEXT NOT NULL,
		amount_paid TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (room_id, user_id)
	);

	-- Discussion thread is append-only: no UPDATE or DELETE statements
	-- exist for this table.
	CREATE TABLE IF NOT EXISTS room_comments (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		user_avatar TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comments_room
		ON room_comments(room_id, created_at);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		user_id TEXT NOT NULL,
		room_id TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user
		ON transactions(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_room
		ON transactions(room_id) WHERE room_id != '';

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROOM STORE (room.RoomStore interface)
// =============================================================================

func (s *Store) CreateRoom(ctx context.Context, r *room.SavingRoom) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, name, creator_id, goal, total_amount, payment_period, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.CreatorID, r.Goal, r.TotalAmount.String(),
		string(r.PaymentPeriod), r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	if err := insertMembers(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMembers(ctx context.Context, tx *sql.Tx, r *room.SavingRoom) error {
	for i, p := range r.Participants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO room_participants (room_id, user_id, name, avatar_url, position)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, p.ID, p.Name, p.AvatarURL, i,
		); err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	for i, p := range r.Payments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO room_payments (room_id, user_id, amount_due, amount_paid, position)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, p.UserID, p.AmountDue.String(), p.AmountPaid.String(), i,
		); err != nil {
			return fmt.Errorf("failed to insert payment record: %w", err)
		}
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*room.SavingRoom, error) {
	return s.loadRoom(ctx, id)
}

func (s *Store) loadRoom(ctx context.Context, id string) (*room.SavingRoom, error) {
	var (
		r         room.SavingRoom
		total     string
		cadence   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, creator_id, goal, total_amount, payment_period, created_at, version
		FROM rooms WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.CreatorID, &r.Goal, &total, &cadence, &createdAt, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, room.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	if r.TotalAmount, err = accounting.MoneyFromString(total); err != nil {
		return nil, fmt.Errorf("room %s: bad total_amount: %w", id, err)
	}
	r.PaymentPeriod = accounting.Cadence(cadence)
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("room %s: bad created_at: %w", id, err)
	}

	if err := s.loadMembers(ctx, &r); err != nil {
		return nil, err
	}
	if err := s.loadComments(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) loadMembers(ctx context.Context, r *room.SavingRoom) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, name, avatar_url FROM room_participants
		WHERE room_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p room.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL); err != nil {
			return err
		}
		r.Participants = append(r.Participants, p)
		r.ParticipantIDs = append(r.ParticipantIDs, p.ID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	payRows, err := s.db.QueryContext(ctx, `
		SELECT user_id, amount_due, amount_paid FROM room_payments
		WHERE room_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return err
	}
	defer payRows.Close()
	for payRows.Next() {
		var (
			p         room.ParticipantPayment
			due, paid string
		)
		if err := payRows.Scan(&p.UserID, &due, &paid); err != nil {
			return err
		}
		if p.AmountDue, err = accounting.MoneyFromString(due); err != nil {
			return err
		}
		if p.AmountPaid, err = accounting.MoneyFromString(paid); err != nil {
			return err
		}
		r.Payments = append(r.Payments, p)
	}
	return payRows.Err()
}

func (s *Store) loadComments(ctx context.Context, r *room.SavingRoom) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, user_name, user_avatar, text, created_at
		FROM room_comments WHERE room_id = ? ORDER BY created_at, id`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c         room.Comment
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserName, &c.UserAvatar, &c.Text, &createdAt); err != nil {
			return err
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return err
		}
		r.Discussion = append(r.Discussion, c)
	}
	return rows.Err()
}

func (s *Store) ListRoomsByUser(ctx context.Context, userID string) ([]*room.SavingRoom, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id FROM rooms r
		JOIN room_participants p ON p.room_id = r.id
		WHERE p.user_id = ?
		ORDER BY r.created_at DESC, r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*room.SavingRoom, 0, len(ids))
	for _, id := range ids {
		r, err := s.loadRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// UpdateRoom replaces the room's mutable fields behind the version guard.
// Membership rows are replaced wholesale; comments are untouched.
func (s *Store) UpdateRoom(ctx context.Context, r *room.SavingRoom, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpVersion(ctx, tx, r.ID, expectedVersion); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE rooms SET name = ?, goal = ?, total_amount = ? WHERE id = ?`,
		r.Name, r.Goal, r.TotalAmount.String(), r.ID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_participants WHERE room_id = ?`, r.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_payments WHERE room_id = ?`, r.ID); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordPayment applies new payment balances and the paired audit
// transaction atomically, behind the same version guard.
func (s *Store) RecordPayment(ctx context.Context, roomID string, expectedVersion int64, payments []room.ParticipantPayment, txRecord room.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpVersion(ctx, tx, roomID, expectedVersion); err != nil {
		return err
	}
	for _, p := range payments {
		if _, err := tx.ExecContext(ctx, `
			UPDATE room_payments SET amount_due = ?, amount_paid = ?
			WHERE room_id = ? AND user_id = ?`,
			p.AmountDue.String(), p.AmountPaid.String(), roomID, p.UserID,
		); err != nil {
			return err
		}
	}
	if err := insertTransaction(ctx, tx, txRecord); err != nil {
		return err
	}
	return tx.Commit()
}

// bumpVersion is the compare-and-swap core: one UPDATE that both checks
// and advances the version. Zero affected rows means not-found or a
// lost race; a follow-up existence check tells them apart.
func bumpVersion(ctx context.Context, tx *sql.Tx, roomID string, expectedVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET version = version + 1 WHERE id = ? AND version = ?`,
		roomID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE id = ?`, roomID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return room.ErrRoomNotFound
		}
		return room.ErrConcurrentModification
	}
	return nil
}

func (s *Store) AppendComment(ctx context.Context, roomID string, c room.Comment) error {
	// INSERT ... SELECT against rooms doubles as the existence check.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO room_comments (id, room_id, user_id, user_name, user_avatar, text, created_at)
		SELECT ?, id, ?, ?, ?, ?, ? FROM rooms WHERE id = ?`,
		c.ID, c.UserID, c.UserName, c.UserAvatar, c.Text,
		c.CreatedAt.UTC().Format(time.RFC3339Nano), roomID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return room.ErrRoomNotFound
	}
	return nil
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return room.ErrRoomNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTION STORE (room.TransactionStore interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, e execer, tx room.Transaction) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount, category, date, tx_type, user_id, room_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Description, tx.Amount.String(), tx.Category,
		tx.Date.UTC().Format(time.RFC3339Nano), string(tx.Type), tx.UserID, tx.RoomID,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx room.Transaction) error {
	return insertTransaction(ctx, s.db, tx)
}

func (s *Store) TransactionsByRoom(ctx context.Context, roomID string) ([]room.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, description, amount, category, date, tx_type, user_id, room_id
		FROM transactions WHERE room_id = ? ORDER BY date DESC, id`, roomID)
}

func (s *Store) TransactionsByUser(ctx context.Context, userID string) ([]room.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, description, amount, category, date, tx_type, user_id, room_id
		FROM transactions WHERE user_id = ? ORDER BY date DESC, id`, userID)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]room.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []room.Transaction
	for rows.Next() {
		var (
			tx           room.Transaction
			amount, date string
			txType       string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &amount, &tx.Category, &date, &txType, &tx.UserID, &tx.RoomID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Amount, err = accounting.MoneyFromString(amount); err != nil {
			return nil, err
		}
		if tx.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, err
		}
		tx.Type = room.TransactionType(txType)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// =============================================================================
// USER STORE (room.UserStore interface)
// =============================================================================

func (s *Store) PutUser(ctx context.Context, u room.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url`,
		u.ID, u.Name, u.AvatarURL)
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*room.User, error) {
	var u room.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, avatar_url FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, room.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]room.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, avatar_url FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []room.User
	for rows.Next() {
		var u room.User
		if err := rows.Scan(&u.ID, &u.Name, &u.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
