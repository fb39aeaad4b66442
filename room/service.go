/*
service.go - Room mutation operations and the derived view

PURPOSE:
  The Service is the only writer of saving rooms. It validates intent,
  enforces the creator-only rules, applies mutations through the store's
  two contracts (append-only vs compare-and-swap), and notifies watchers
  so subscribed callers can recompute their views.

MUTATIONS:
  CreateRoom     room + participants + zero-balance payments, atomically
  RecordPayment  bump one participant's amountPaid + audit transaction
  UpdateRoom     rename / regoal / restructure the participant set
  AddComment     append to the discussion thread
  DeleteRoom     terminal removal

  RecordPayment validates the amount against the participant's currently
  owed balance here, caller-side; the accounting engine never re-checks
  that bound. A concurrent-modification race is surfaced as
  ErrConcurrentModification without retrying - one creator acts at a
  time, so contention is an anomaly worth seeing, not hiding.

THE VIEW:
  View() assembles everything a room screen renders: the snapshot, the
  elapsed periods, summary totals, per-participant statuses, chart rows,
  the per-period payment breakdown, the open time window, and the payment
  history. It is recomputed fresh on every call; Watch() tells callers
  when a recomputation is worthwhile.
*/
package room

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/listerineh/payplay-app/accounting"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
	hub   *watchHub
}

// Option customizes a Service; used by tests to pin clocks and IDs.
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store: store,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
		hub:   newWatchHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// CREATE
// =============================================================================

// CreateRoomInput carries the create form. AmountPerParticipant is the
// per-period due amount each member owes; the room total is derived.
type CreateRoomInput struct {
	Name                 string
	Goal                 string
	CreatorID            string
	AmountPerParticipant accounting.Money
	PaymentPeriod        string
	ParticipantIDs       []string
}

func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*SavingRoom, error) {
	if len(strings.TrimSpace(in.Name)) < 3 {
		return nil, &ValidationError{Field: "name", Message: "must be at least 3 characters"}
	}
	if !in.AmountPerParticipant.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	cadence, err := accounting.ParseCadence(in.PaymentPeriod)
	if err != nil {
		return nil, &ValidationError{Field: "paymentPeriod", Message: err.Error()}
	}

	memberIDs := ensureMember(in.ParticipantIDs, in.CreatorID)
	participants, err := s.resolveParticipants(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	payments := make([]ParticipantPayment, len(participants))
	for i, p := range participants {
		payments[i] = ParticipantPayment{
			UserID:     p.ID,
			AmountDue:  in.AmountPerParticipant,
			AmountPaid: accounting.NewMoney(0),
		}
	}

	r := &SavingRoom{
		ID:             s.newID(),
		Name:           strings.TrimSpace(in.Name),
		CreatorID:      in.CreatorID,
		Goal:           in.Goal,
		TotalAmount:    in.AmountPerParticipant.MulInt(int64(len(participants))),
		PaymentPeriod:  cadence,
		Participants:   participants,
		ParticipantIDs: memberIDs,
		Payments:       payments,
		CreatedAt:      s.now().UTC(),
		Version:        1,
	}
	if err := s.store.CreateRoom(ctx, r); err != nil {
		return nil, err
	}

	s.log.Info("saving room created",
		"room_id", r.ID, "creator_id", r.CreatorID,
		"cadence", r.PaymentPeriod, "participants", len(participants))
	return r.Clone(), nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Service) GetRoom(ctx context.Context, id string) (*SavingRoom, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context, userID string) ([]*SavingRoom, error) {
	return s.store.ListRoomsByUser(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// RoomView is the full derived state of one room at an instant.
type RoomView struct {
	Room      *SavingRoom
	Periods   []accounting.Period
	Summary   accounting.Summary
	Statuses  map[string]accounting.Status
	Chart     []accounting.ChartRow
	Breakdown map[string][]accounting.PeriodAllocation
	Window    accounting.Window
	History   []Transaction
}

// View recomputes the derived room state from scratch. The discussion
// thread and payment history come back newest first.
func (s *Service) View(ctx context.Context, roomID string, now time.Time) (*RoomView, error) {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	periods, err := accounting.EnumeratePeriods(r.Schedule(), now)
	if err != nil {
		return nil, err
	}
	window, err := accounting.CurrentWindow(r.Schedule(), now)
	if err != nil {
		return nil, err
	}

	history, err := s.store.TransactionsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	SortTransactionsDesc(history)

	sort.SliceStable(r.Discussion, func(i, j int) bool {
		return r.Discussion[i].CreatedAt.After(r.Discussion[j].CreatedAt)
	})

	acct := r.Account()
	return &RoomView{
		Room:      r,
		Periods:   periods,
		Summary:   accounting.Summarize(acct, periods),
		Statuses:  accounting.Statuses(acct, periods),
		Chart:     accounting.ChartSeries(acct, periods),
		Breakdown: accounting.Breakdown(acct, periods),
		Window:    window,
		History:   history,
	}, nil
}

// =============================================================================
// RECORD PAYMENT - the read-modify-write path
// =============================================================================

// RecordPayment increments a participant's lifetime paid amount and logs
// the paired audit transaction in one atomic store operation. Creator-only.
// The amount must be positive and must not exceed the participant's
// currently owed balance (due-to-date minus lifetime paid).
func (s *Service) RecordPayment(ctx context.Context, roomID, actorID, participantID string, amount accounting.Money) (*SavingRoom, error) {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.CreatorID != actorID {
		return nil, ErrNotCreator
	}
	payment, ok := r.PaymentFor(participantID)
	if !ok {
		return nil, ErrUnknownParticipant
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := s.now().UTC()
	periods, err := accounting.EnumeratePeriods(r.Schedule(), now)
	if err != nil {
		return nil, err
	}
	line := accounting.Line{AmountDue: payment.AmountDue, AmountPaid: payment.AmountPaid}
	owed := accounting.RemainingOwed(line, accounting.LineDueToDate(line, r.PaymentPeriod, len(periods)))
	if amount.GreaterThan(owed) {
		return nil, &AmountExceedsOwedError{Requested: amount, Owed: owed}
	}

	payments := append([]ParticipantPayment(nil), r.Payments...)
	for i := range payments {
		if payments[i].UserID == participantID {
			payments[i].AmountPaid = payments[i].AmountPaid.Add(amount)
		}
	}

	tx := Transaction{
		ID:          s.newID(),
		Description: "Payment for \"" + r.Name + "\"",
		Amount:      amount,
		Category:    "Other",
		Date:        now,
		Type:        TxExpense,
		UserID:      participantID,
		RoomID:      r.ID,
	}

	if err := s.store.RecordPayment(ctx, r.ID, r.Version, payments, tx); err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		"room_id", r.ID, "participant_id", participantID, "amount", amount.String())
	s.hub.notify(r.ID)
	return s.store.GetRoom(ctx, roomID)
}

// =============================================================================
// EDIT
// =============================================================================

// UpdateRoomInput restructures a room. The payment period and creation
// time are immutable and deliberately absent.
type UpdateRoomInput struct {
	Name           string
	Goal           string
	ParticipantIDs []string
}

// UpdateRoom rebuilds the participant set. Surviving participants keep
// their amountPaid; every payment record's amountDue is reset uniformly
// to the room's established per-participant amount, and the room total is
// recomputed from the new head count.
func (s *Service) UpdateRoom(ctx context.Context, roomID, actorID string, in UpdateRoomInput) (*SavingRoom, error) {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.CreatorID != actorID {
		return nil, ErrNotCreator
	}
	if len(strings.TrimSpace(in.Name)) < 3 {
		return nil, &ValidationError{Field: "name", Message: "must be at least 3 characters"}
	}
	if len(r.Payments) == 0 {
		return nil, ErrNoPayments
	}
	perParticipant := r.Payments[0].AmountDue

	memberIDs := ensureMember(in.ParticipantIDs, r.CreatorID)
	if len(memberIDs) == 0 {
		return nil, &ValidationError{Field: "participantIds", Message: "at least one participant is required"}
	}
	participants, err := s.resolveParticipants(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	payments := make([]ParticipantPayment, len(participants))
	for i, p := range participants {
		paid := accounting.NewMoney(0)
		if existing, ok := r.PaymentFor(p.ID); ok {
			paid = existing.AmountPaid
		}
		payments[i] = ParticipantPayment{UserID: p.ID, AmountDue: perParticipant, AmountPaid: paid}
	}

	updated := r.Clone()
	updated.Name = strings.TrimSpace(in.Name)
	updated.Goal = in.Goal
	updated.Participants = participants
	updated.ParticipantIDs = memberIDs
	updated.Payments = payments
	updated.TotalAmount = perParticipant.MulInt(int64(len(participants)))

	if err := s.store.UpdateRoom(ctx, updated, r.Version); err != nil {
		return nil, err
	}

	s.log.Info("saving room updated", "room_id", r.ID, "participants", len(participants))
	s.hub.notify(r.ID)
	return s.store.GetRoom(ctx, roomID)
}

// =============================================================================
// COMMENTS - the append-only path
// =============================================================================

// AddComment appends to the discussion thread. Open to every participant,
// not just the creator. No read-modify-write: concurrent posts all land.
func (s *Service) AddComment(ctx context.Context, roomID, actorID, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !r.HasParticipant(actorID) {
		return nil, ErrNotParticipant
	}
	author, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c := Comment{
		ID:         s.newID(),
		UserID:     author.ID,
		UserName:   author.Name,
		UserAvatar: author.AvatarURL,
		Text:       text,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.AppendComment(ctx, roomID, c); err != nil {
		return nil, err
	}

	s.hub.notify(roomID)
	return &c, nil
}

// =============================================================================
// DELETE
// =============================================================================

func (s *Service) DeleteRoom(ctx context.Context, roomID, actorID string) error {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if r.CreatorID != actorID {
		return ErrNotCreator
	}
	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	s.log.Info("saving room deleted", "room_id", roomID)
	s.hub.notify(roomID)
	return nil
}

// =============================================================================
// PERSONAL TRANSACTIONS
// =============================================================================

// AddTransactionInput logs an income or expense entry from the dashboard.
type AddTransactionInput struct {
	UserID      string
	Description string
	Amount      accounting.Money
	Category    string
	Type        TransactionType
}

func (s *Service) AddTransaction(ctx context.Context, in AddTransactionInput) (*Transaction, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "must not be empty"}
	}
	if !in.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if in.Type != TxIncome && in.Type != TxExpense {
		return nil, &ValidationError{Field: "type", Message: "must be income or expense"}
	}

	tx := Transaction{
		ID:          s.newID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        s.now().UTC(),
		Type:        in.Type,
		UserID:      in.UserID,
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	txs, err := s.store.TransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortTransactionsDesc(txs)
	return txs, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ensureMember dedupes the ID list and guarantees the creator is present.
func ensureMember(ids []string, creatorID string) []string {
	out := make([]string, 0, len(ids)+1)
	seen := make(map[string]bool, len(ids)+1)
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if !seen[creatorID] {
		out = append(out, creatorID)
	}
	return out
}

func (s *Service) resolveParticipants(ctx context.Context, ids []string) ([]Participant, error) {
	participants := make([]Participant, 0, len(ids))
	for _, id := range ids {
		u, err := s.store.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		participants = append(participants, Participant{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL})
	}
	return participants, nil
}
