/*
period.go - Period enumeration over calendar arithmetic

PURPOSE:
  Produces the ordered list of billing periods that have elapsed between a
  schedule's anchor and an "as of" instant. This list drives everything
  else: due-to-date totals, waterfall allocation, and status derivation.

PERIOD KEYS:
  hourly      2024-03-05-14        (YYYY-MM-DD-HH)
  weekly      2024-W10             (ISO year + ISO week, Monday start)
  bi-weekly   2024-W10             (ISO week of the period start)
  monthly     2024-03              (YYYY-MM)
  yearly      2024                 (YYYY)

  The bi-weekly key scheme can collide with the weekly one, but a room's
  cadence is fixed at creation so the two never mix within a room.

CALENDAR STEPS:
  Month and year steps clamp to the end of shorter months: an anchor on
  Jan 31 advances to Feb 28 (or 29), not Mar 2. Week steps are plain
  7/14 day additions. All arithmetic is in UTC.

SAFETY:
  Unknown cadences fail fast, and the enumeration loop is capped so a
  step function that ever stops advancing surfaces an error instead of
  spinning forever.
*/
package accounting

import (
	"fmt"
	"time"
)

// maxEnumeratedPeriods bounds the enumeration loop. The smallest cadence is
// hourly, so this covers more than a decade of elapsed periods.
const maxEnumeratedPeriods = 100000

// EnumeratePeriods returns every period of the schedule whose start is not
// after asOf, in strictly ascending order.
//
// A one-time schedule has no periods: the due amount is a single lump sum
// and callers special-case it. An anchor in the future yields an empty
// result. An unknown cadence is an error.
func EnumeratePeriods(s Schedule, asOf time.Time) ([]Period, error) {
	if s.Cadence == CadenceOneTime {
		return nil, nil
	}
	if _, err := ParseCadence(string(s.Cadence)); err != nil {
		return nil, err
	}

	cur := truncateAnchor(s.Cadence, s.Anchor.UTC())
	asOf = asOf.UTC()

	var periods []Period
	for !cur.After(asOf) {
		if len(periods) >= maxEnumeratedPeriods {
			return nil, fmt.Errorf("%w: %d periods since %s", ErrScheduleStalled, len(periods), s.Anchor.Format(time.RFC3339))
		}
		periods = append(periods, periodAt(s.Cadence, cur))

		next := advance(s.Cadence, cur)
		if !next.After(cur) {
			return nil, ErrScheduleStalled
		}
		cur = next
	}
	return periods, nil
}

// truncateAnchor snaps the anchor to the start of its first period:
// hour start for hourly schedules, day start for everything else.
func truncateAnchor(c Cadence, anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	if c == CadenceHourly {
		return time.Date(y, m, d, anchor.Hour(), 0, 0, 0, time.UTC)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// advance moves one cadence step forward from the given period start.
func advance(c Cadence, t time.Time) time.Time {
	switch c {
	case CadenceHourly:
		return t.Add(time.Hour)
	case CadenceWeekly:
		return t.AddDate(0, 0, 7)
	case CadenceBiWeekly:
		return t.AddDate(0, 0, 14)
	case CadenceMonthly:
		return addMonthsClamped(t, 1)
	case CadenceYearly:
		return addMonthsClamped(t, 12)
	default:
		return t
	}
}

// addMonthsClamped adds calendar months, clamping the day-of-month to the
// target month's length. time.AddDate would overflow Jan 31 into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if last := daysInMonth(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// periodAt builds the Period for the step starting at t.
func periodAt(c Cadence, t time.Time) Period {
	switch c {
	case CadenceHourly:
		return Period{
			Key:     t.Format("2006-01-02-15"),
			Label:   t.Format("Jan 2, 3 PM"),
			DueDate: t,
		}
	case CadenceMonthly:
		return Period{
			Key:     t.Format("2006-01"),
			Label:   t.Format("January 2006"),
			DueDate: t,
		}
	case CadenceYearly:
		return Period{
			Key:     t.Format("2006"),
			Label:   t.Format("2006"),
			DueDate: t,
		}
	case CadenceWeekly:
		year, week := t.ISOWeek()
		return Period{
			Key:     fmt.Sprintf("%d-W%d", year, week),
			Label:   fmt.Sprintf("Week %d, %d", week, year),
			DueDate: t,
		}
	case CadenceBiWeekly:
		year, week := t.ISOWeek()
		return Period{
			Key:     fmt.Sprintf("%d-W%d", year, week),
			Label:   "Bi-Weekly from " + t.Format("Jan 2"),
			DueDate: t,
		}
	default:
		return Period{DueDate: t}
	}
}
