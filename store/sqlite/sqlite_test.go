package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/room"
	"github.com/listerineh/payplay-app/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRoom() *room.SavingRoom {
	return &room.SavingRoom{
		ID:             "r-1",
		Name:           "Beach House",
		CreatorID:      "u-ana",
		Goal:           "Deposit by June",
		TotalAmount:    accounting.NewMoney(300),
		PaymentPeriod:  accounting.CadenceMonthly,
		Participants:   []room.Participant{{ID: "u-ana", Name: "Ana"}, {ID: "u-ben", Name: "Ben", AvatarURL: "https://img/ben.png"}},
		ParticipantIDs: []string{"u-ana", "u-ben"},
		Payments: []room.ParticipantPayment{
			{UserID: "u-ana", AmountDue: accounting.NewMoney(150)},
			{UserID: "u-ben", AmountDue: accounting.NewMoney(150)},
		},
		CreatedAt: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
		Version:   1,
	}
}

func TestSQLite_RoomRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRoom(ctx, testRoom()))

	got, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)

	assert.Equal(t, "Beach House", got.Name)
	assert.Equal(t, "u-ana", got.CreatorID)
	assert.Equal(t, accounting.CadenceMonthly, got.PaymentPeriod)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.TotalAmount.Equal(accounting.NewMoney(300)))

	// Participant and payment order survives the round trip.
	require.Len(t, got.Participants, 2)
	assert.Equal(t, []string{"u-ana", "u-ben"}, got.ParticipantIDs)
	require.Len(t, got.Payments, 2)
	assert.True(t, got.Payments[1].AmountDue.Equal(accounting.NewMoney(150)))
}

func TestSQLite_GetRoomNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRoom(context.Background(), "nope")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestSQLite_UpdateRoom_VersionGuard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateRoom(ctx, testRoom()))

	r, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)

	first := r.Clone()
	first.Name = "Beach House 2024"
	require.NoError(t, s.UpdateRoom(ctx, first, r.Version))

	// A writer still holding the old version loses the race.
	second := r.Clone()
	second.Name = "Stale"
	err = s.UpdateRoom(ctx, second, r.Version)
	assert.ErrorIs(t, err, room.ErrConcurrentModification)

	current, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Beach House 2024", current.Name)
	assert.Equal(t, int64(2), current.Version)
}

func TestSQLite_UpdateRoomPreservesComments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateRoom(ctx, testRoom()))

	c := room.Comment{ID: "c-1", UserID: "u-ben", UserName: "Ben", Text: "count me in", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.AppendComment(ctx, "r-1", c))

	r, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	r.Name = "Renamed"
	require.NoError(t, s.UpdateRoom(ctx, r, r.Version))

	got, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, got.Discussion, 1)
	assert.Equal(t, "count me in", got.Discussion[0].Text)
}

func TestSQLite_RecordPayment_AtomicWithAudit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateRoom(ctx, testRoom()))

	payments := []room.ParticipantPayment{
		{UserID: "u-ana", AmountDue: accounting.NewMoney(150)},
		{UserID: "u-ben", AmountDue: accounting.NewMoney(150), AmountPaid: accounting.NewMoney(75)},
	}
	audit := room.Transaction{
		ID: "tx-1", Description: `Payment for "Beach House"`, Amount: accounting.NewMoney(75),
		Category: "Other", Date: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Type: room.TxExpense, UserID: "u-ben", RoomID: "r-1",
	}
	require.NoError(t, s.RecordPayment(ctx, "r-1", 1, payments, audit))

	got, err := s.GetRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, got.Payments[1].AmountPaid.Equal(accounting.NewMoney(75)))

	history, err := s.TransactionsByRoom(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, room.TxExpense, history[0].Type)

	// Stale replay is rejected and leaves no second audit record behind.
	err = s.RecordPayment(ctx, "r-1", 1, payments, room.Transaction{ID: "tx-2", RoomID: "r-1"})
	assert.ErrorIs(t, err, room.ErrConcurrentModification)

	history, err = s.TransactionsByRoom(ctx, "r-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSQLite_DeleteRoomCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateRoom(ctx, testRoom()))
	require.NoError(t, s.AppendComment(ctx, "r-1", room.Comment{ID: "c-1", UserID: "u-ana", Text: "hi", CreatedAt: time.Now()}))

	require.NoError(t, s.DeleteRoom(ctx, "r-1"))

	_, err := s.GetRoom(ctx, "r-1")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
	assert.ErrorIs(t, s.DeleteRoom(ctx, "r-1"), room.ErrRoomNotFound)
	assert.ErrorIs(t, s.AppendComment(ctx, "r-1", room.Comment{ID: "c-2"}), room.ErrRoomNotFound)
}

func TestSQLite_ListRoomsByUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := testRoom()
	require.NoError(t, s.CreateRoom(ctx, older))

	newer := testRoom()
	newer.ID = "r-2"
	newer.Name = "Ski Trip"
	newer.CreatedAt = older.CreatedAt.AddDate(0, 1, 0)
	require.NoError(t, s.CreateRoom(ctx, newer))

	rooms, err := s.ListRoomsByUser(ctx, "u-ben")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "r-2", rooms[0].ID)

	rooms, err = s.ListRoomsByUser(ctx, "u-stranger")
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestSQLite_TransactionsByUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, amount := range []int64{20, 55, 12} {
		tx := room.Transaction{
			ID:          string(rune('a' + i)),
			Description: "Groceries",
			Amount:      accounting.NewMoney(amount),
			Category:    "Food",
			Date:        base.AddDate(0, 0, i),
			Type:        room.TxExpense,
			UserID:      "u-ana",
		}
		require.NoError(t, s.AppendTransaction(ctx, tx))
	}

	got, err := s.TransactionsByUser(ctx, "u-ana")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Amount.Equal(accounting.NewMoney(12)), "latest date first")
	assert.True(t, got[2].Amount.Equal(accounting.NewMoney(20)))
}

func TestSQLite_UserDirectory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.PutUser(ctx, room.User{ID: "u-1", Name: "Zoe"}))
	require.NoError(t, s.PutUser(ctx, room.User{ID: "u-2", Name: "Ana"}))

	// Upsert replaces, never duplicates.
	require.NoError(t, s.PutUser(ctx, room.User{ID: "u-1", Name: "Zoe P", AvatarURL: "https://img/zoe.png"}))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].Name, "sorted by name")
	assert.Equal(t, "Zoe P", users[1].Name)

	_, err = s.GetUser(ctx, "u-missing")
	assert.ErrorIs(t, err, room.ErrUserNotFound)
}
