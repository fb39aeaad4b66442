/*
Package room provides the SavingRoom aggregate and its mutation service.

PURPOSE:
  A saving room is a shared savings goal: a creator, a set of participants,
  a payment schedule, and one payment record per participant. This package
  owns the aggregate's invariants and the operations that change it
  (create, record payment, edit, comment, delete). All derived numbers come
  from the accounting package; this package only feeds it snapshots.

KEY INVARIANTS:
  - The creator is always a participant.
  - participantIDs, participants, and payments stay in lockstep: same
    length, one payment per participant, keyed by user ID.
  - totalAmount equals the sum of payments[].amountDue.
  - payments[].amountPaid only ever grows, and only via RecordPayment.
  - paymentPeriod and createdAt are immutable after creation.
  - discussion is append-only: comments are never edited or removed.

SEE ALSO:
  - service.go: Mutation operations and the derived room view
  - store.go:   Persistence contracts (append-only vs read-modify-write)
  - accounting: The pure calculation engine this package feeds
*/
package room

import (
	"sort"
	"time"

	"github.com/listerineh/payplay-app/accounting"
)

// =============================================================================
// AGGREGATE TYPES
// =============================================================================

// User is an entry in the user directory (participant picker).
type User struct {
	ID        string
	Name      string
	AvatarURL string
}

// Participant is a member of a saving room.
type Participant struct {
	ID        string
	Name      string
	AvatarURL string
}

// ParticipantPayment tracks one participant's obligations in a room.
// AmountDue is per period, AmountPaid is the cumulative lifetime total.
type ParticipantPayment struct {
	UserID     string
	AmountDue  accounting.Money
	AmountPaid accounting.Money
}

// Comment is one entry of a room's discussion thread. Immutable once posted.
type Comment struct {
	ID         string
	UserID     string
	UserName   string
	UserAvatar string
	Text       string
	CreatedAt  time.Time
}

// SavingRoom is the aggregate root. Version supports the compare-and-swap
// update path; it is bumped by every successful mutation of the room row.
type SavingRoom struct {
	ID             string
	Name           string
	CreatorID      string
	Goal           string
	TotalAmount    accounting.Money
	PaymentPeriod  accounting.Cadence
	Participants   []Participant
	ParticipantIDs []string
	Payments       []ParticipantPayment
	Discussion     []Comment
	CreatedAt      time.Time
	Version        int64
}

// Schedule returns the room's recurrence schedule, anchored at creation.
func (r *SavingRoom) Schedule() accounting.Schedule {
	return accounting.Schedule{Cadence: r.PaymentPeriod, Anchor: r.CreatedAt}
}

// PaymentFor finds a participant's payment record.
func (r *SavingRoom) PaymentFor(userID string) (ParticipantPayment, bool) {
	for _, p := range r.Payments {
		if p.UserID == userID {
			return p, true
		}
	}
	return ParticipantPayment{}, false
}

// HasParticipant reports room membership.
func (r *SavingRoom) HasParticipant(userID string) bool {
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Account builds the accounting snapshot for this room. Participants with
// no matching payment record are skipped rather than failing the whole
// computation, but the roster size still includes them so room-wide due
// amounts stay correct.
func (r *SavingRoom) Account() accounting.Account {
	lines := make([]accounting.Line, 0, len(r.Participants))
	for _, participant := range r.Participants {
		payment, ok := r.PaymentFor(participant.ID)
		if !ok {
			continue
		}
		lines = append(lines, accounting.Line{
			UserID:     participant.ID,
			Name:       participant.Name,
			AmountDue:  payment.AmountDue,
			AmountPaid: payment.AmountPaid,
		})
	}
	return accounting.Account{
		TotalAmount:  r.TotalAmount,
		Cadence:      r.PaymentPeriod,
		Participants: len(r.Participants),
		Lines:        lines,
	}
}

// Clone deep-copies the aggregate so stores and watchers can hand out
// snapshots without aliasing mutable slices.
func (r *SavingRoom) Clone() *SavingRoom {
	if r == nil {
		return nil
	}
	out := *r
	out.Participants = append([]Participant(nil), r.Participants...)
	out.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
	out.Payments = append([]ParticipantPayment(nil), r.Payments...)
	out.Discussion = append([]Comment(nil), r.Discussion...)
	return &out
}

// =============================================================================
// TRANSACTIONS - Individual ledger entries (payments and personal logging)
// =============================================================================

type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
)

// Transaction is a single financial event: either a personal income/expense
// entry logged from the dashboard, or the audit record paired with a room
// payment (RoomID set).
type Transaction struct {
	ID          string
	Description string
	Amount      accounting.Money
	Category    string
	Date        time.Time
	Type        TransactionType
	UserID      string
	RoomID      string
}

// SortTransactionsDesc orders transactions newest first, the display order
// of every history view.
func SortTransactionsDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
