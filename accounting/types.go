/*
Package accounting provides the saving-room contribution accounting engine.

PURPOSE:
  This package contains the pure calculation core of PayPlay: given a
  saving room's schedule and its participants' payment records, it answers
  how much is owed to date, how payments spread across elapsed billing
  periods, and how far along the current period is.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A fixed-point decimal amount, always rounded to cents
  - Cadence: The recurrence unit of a room's schedule
  - Schedule: Cadence plus the anchor instant (room creation time)
  - Period: One elapsed instance of the cadence (e.g. "March 2024")
  - Account: The immutable per-room input snapshot for all calculations

DESIGN PRINCIPLES:
  1. Purity: Every function is a pure computation over immutable inputs.
     No caching, no clocks, no persistence. Callers pass "now" explicitly.
  2. Precision: Money uses decimal.Decimal and re-rounds to 2 decimal
     places after every arithmetic step, so repeated allocation over many
     periods cannot accumulate drift.
  3. Locale neutrality: Outputs are raw numbers, stable keys, and
     canonical English labels. Formatting belongs to the caller.

USAGE:
  periods, err := accounting.EnumeratePeriods(schedule, time.Now())
  rows := accounting.Allocate(due, paid, periods)
  summary := accounting.Summarize(account, periods)

SEE ALSO:
  - period.go:     Period enumeration over calendar arithmetic
  - allocation.go: Waterfall allocation of a paid pool across periods
  - aggregate.go:  Room-level totals, statuses, and chart series
  - window.go:     Progress through the currently open period
*/
package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point decimal amount (2 decimal places)
// =============================================================================

// Money is a decimal amount in the room's single implicit currency.
// Every arithmetic operation rounds half-up at the cent boundary before
// returning, so intermediate results are always exact cent values.
type Money struct {
	d decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{d: decimal.NewFromInt(value)}
}

// MoneyFromFloat converts a float input (e.g. a JSON number) to cents.
func MoneyFromFloat(value float64) Money {
	return Money{d: decimal.NewFromFloat(value).Round(2)}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d: d.Round(2)}, nil
}

// MustMoney parses a decimal string and panics on failure. Test helper.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d).Round(2)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d).Round(2)} }

// MulInt scales by a whole count (e.g. due-per-period x period count).
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n)).Round(2)}
}

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

func (m Money) IsZero() bool                      { return m.d.IsZero() }
func (m Money) IsPositive() bool                  { return m.d.IsPositive() }
func (m Money) IsNegative() bool                  { return m.d.IsNegative() }
func (m Money) Equal(o Money) bool                { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool             { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool          { return m.d.GreaterThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool   { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) Float64() float64                  { f, _ := m.d.Float64(); return f }
func (m Money) String() string                    { return m.d.StringFixed(2) }

// Div is used for ratio derivations (progress percentages). The result is
// a raw float because percentages are display values, not ledger values.
func (m Money) Div(o Money) float64 {
	if o.IsZero() {
		return 0
	}
	f, _ := m.d.Div(o.d).Float64()
	return f
}

// MarshalJSON encodes Money as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	m.d = d.Round(2)
	return nil
}

// =============================================================================
// CADENCE AND SCHEDULE
// =============================================================================

// Cadence is the recurrence unit of a saving room's payment schedule.
// It is fixed at room creation and never edited afterwards.
type Cadence string

const (
	CadenceOneTime  Cadence = "one-time"
	CadenceHourly   Cadence = "hourly"
	CadenceWeekly   Cadence = "weekly"
	CadenceBiWeekly Cadence = "bi-weekly"
	CadenceMonthly  Cadence = "monthly"
	CadenceYearly   Cadence = "yearly"
)

// ParseCadence validates a raw cadence value. Enumeration and window
// calculations refuse unknown cadences rather than risk a loop that
// never reaches "now".
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(s); c {
	case CadenceOneTime, CadenceHourly, CadenceWeekly, CadenceBiWeekly, CadenceMonthly, CadenceYearly:
		return c, nil
	default:
		return "", &UnknownCadenceError{Value: s}
	}
}

// Recurring reports whether the cadence produces billing periods at all.
func (c Cadence) Recurring() bool {
	return c != CadenceOneTime && c != ""
}

// Schedule anchors a recurring cadence at the room's creation instant.
type Schedule struct {
	Cadence Cadence
	Anchor  time.Time
}

// =============================================================================
// PERIOD - One elapsed instance of the cadence (derived, never persisted)
// =============================================================================

// Period identifies a single billing period of a room's schedule.
// Key is unique per calendar instance and used for deduplication; Label is
// a canonical English rendering; DueDate is the period's start instant.
type Period struct {
	Key     string
	Label   string
	DueDate time.Time
}

// =============================================================================
// ACCOUNT - Immutable input snapshot for room-level calculations
// =============================================================================

// Line is one participant's payment record: the per-period due amount and
// the cumulative lifetime amount paid.
type Line struct {
	UserID     string
	Name       string
	AmountDue  Money
	AmountPaid Money
}

// Account is the accounting view of a saving room. The caller builds it by
// joining the room's participant set with its payment records; participants
// without a matching payment record are left out of Lines (data
// inconsistency degrades to omission, not failure) but still count toward
// Participants, so the room-wide due amount reflects the full roster.
type Account struct {
	TotalAmount Money
	Cadence     Cadence

	// Participants is the full roster size. Zero means "derive from
	// Lines", for callers that build accounts from lines alone.
	Participants int

	Lines []Line
}

func (a Account) participantCount() int {
	if a.Participants > 0 {
		return a.Participants
	}
	return len(a.Lines)
}
