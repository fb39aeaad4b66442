// Package store provides an in-memory room.Store implementation
// (for testing/dev). The production store lives in store/sqlite.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/listerineh/payplay-app/room"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	rooms        map[string]*room.SavingRoom
	transactions []room.Transaction
	users        map[string]room.User
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*room.SavingRoom),
		users: make(map[string]room.User),
	}
}

// =============================================================================
// ROOMS
// =============================================================================

func (m *Memory) CreateRoom(_ context.Context, r *room.SavingRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r.Clone()
	return nil
}

func (m *Memory) GetRoom(_ context.Context, id string) (*room.SavingRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) ListRoomsByUser(_ context.Context, userID string) ([]*room.SavingRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*room.SavingRoom
	for _, r := range m.rooms {
		if r.HasParticipant(userID) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateRoom applies the compare-and-swap contract: the write lands only
// if the stored version still matches what the caller read.
func (m *Memory) UpdateRoom(_ context.Context, r *room.SavingRoom, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rooms[r.ID]
	if !ok {
		return room.ErrRoomNotFound
	}
	if current.Version != expectedVersion {
		return room.ErrConcurrentModification
	}

	next := r.Clone()
	next.Discussion = append([]room.Comment(nil), current.Discussion...)
	next.Version = expectedVersion + 1
	m.rooms[r.ID] = next
	return nil
}

func (m *Memory) RecordPayment(_ context.Context, roomID string, expectedVersion int64, payments []room.ParticipantPayment, tx room.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rooms[roomID]
	if !ok {
		return room.ErrRoomNotFound
	}
	if current.Version != expectedVersion {
		return room.ErrConcurrentModification
	}

	// Payment update and audit transaction land together or not at all.
	current.Payments = append([]room.ParticipantPayment(nil), payments...)
	current.Version++
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *Memory) AppendComment(_ context.Context, roomID string, c room.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rooms[roomID]
	if !ok {
		return room.ErrRoomNotFound
	}
	current.Discussion = append(current.Discussion, c)
	return nil
}

func (m *Memory) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; !ok {
		return room.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx room.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *Memory) TransactionsByRoom(_ context.Context, roomID string) ([]room.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []room.Transaction
	for _, tx := range m.transactions {
		if tx.RoomID == roomID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *Memory) TransactionsByUser(_ context.Context, userID string) ([]room.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []room.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) PutUser(_ context.Context, u room.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*room.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, room.ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]room.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]room.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
