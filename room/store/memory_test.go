package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/room"
	"github.com/listerineh/payplay-app/room/store"
)

func seedRoom() *room.SavingRoom {
	return &room.SavingRoom{
		ID:             "r-1",
		Name:           "Rent Pool",
		CreatorID:      "u-ana",
		TotalAmount:    accounting.NewMoney(200),
		PaymentPeriod:  accounting.CadenceMonthly,
		Participants:   []room.Participant{{ID: "u-ana", Name: "Ana"}, {ID: "u-ben", Name: "Ben"}},
		ParticipantIDs: []string{"u-ana", "u-ben"},
		Payments: []room.ParticipantPayment{
			{UserID: "u-ana", AmountDue: accounting.NewMoney(100)},
			{UserID: "u-ben", AmountDue: accounting.NewMoney(100)},
		},
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
}

// =============================================================================
// COMPARE-AND-SWAP CONTRACT
// =============================================================================

func TestMemory_UpdateRoom_StaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateRoom(ctx, seedRoom()))

	r, err := mem.GetRoom(ctx, "r-1")
	require.NoError(t, err)

	// First writer wins and bumps the version.
	first := r.Clone()
	first.Name = "Rent Pool 2024"
	require.NoError(t, mem.UpdateRoom(ctx, first, r.Version))

	// Second writer still holds the old version: rejected, not merged.
	second := r.Clone()
	second.Name = "Stale Write"
	err = mem.UpdateRoom(ctx, second, r.Version)
	assert.ErrorIs(t, err, room.ErrConcurrentModification)

	current, err := mem.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Rent Pool 2024", current.Name)
	assert.Equal(t, int64(2), current.Version)
}

func TestMemory_RecordPayment_AtomicWithVersionGuard(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateRoom(ctx, seedRoom()))

	payments := []room.ParticipantPayment{
		{UserID: "u-ana", AmountDue: accounting.NewMoney(100)},
		{UserID: "u-ben", AmountDue: accounting.NewMoney(100), AmountPaid: accounting.NewMoney(50)},
	}
	tx := room.Transaction{ID: "tx-1", RoomID: "r-1", UserID: "u-ben", Amount: accounting.NewMoney(50), Type: room.TxExpense, Date: time.Now()}

	require.NoError(t, mem.RecordPayment(ctx, "r-1", 1, payments, tx))

	// Stale replay fails and must leave no second transaction behind.
	err := mem.RecordPayment(ctx, "r-1", 1, payments, room.Transaction{ID: "tx-2", RoomID: "r-1"})
	assert.ErrorIs(t, err, room.ErrConcurrentModification)

	history, err := mem.TransactionsByRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// =============================================================================
// SNAPSHOT ISOLATION
// =============================================================================

func TestMemory_GetRoomReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateRoom(ctx, seedRoom()))

	a, err := mem.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	a.Payments[0].AmountPaid = accounting.NewMoney(999)
	a.Name = "mutated locally"

	b, err := mem.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Rent Pool", b.Name)
	assert.True(t, b.Payments[0].AmountPaid.IsZero(), "store state must not alias returned snapshots")
}

func TestMemory_CommentsAppendWithoutVersionCheck(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateRoom(ctx, seedRoom()))

	for i, text := range []string{"first", "second", "third"} {
		c := room.Comment{ID: string(rune('a' + i)), UserID: "u-ana", Text: text, CreatedAt: time.Now()}
		require.NoError(t, mem.AppendComment(ctx, "r-1", c))
	}

	r, err := mem.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, r.Discussion, 3)
	assert.Equal(t, "first", r.Discussion[0].Text, "insertion order preserved in storage")
}
