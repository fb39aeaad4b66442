/*
window.go - Progress through the currently open period

PURPOSE:
  Answers "how far into the current billing period are we?" independently
  of any payment state. The room details view renders this as a thin time
  bar and re-asks every 30 seconds; the engine itself is stateless and
  never schedules anything.

ALGORITHM:
  Starting at the anchor, advance one cadence step at a time until the
  step's end lands after "now". That step is the open period;
  progress = (now - start) / (end - start) * 100, clamped to [0, 100].
*/
package accounting

import "time"

// Window describes the currently open period of a schedule.
type Window struct {
	// Progress is the elapsed fraction of the open period in percent,
	// clamped to [0, 100]. Zero for one-time schedules.
	Progress float64

	Start time.Time
	End   time.Time
}

// CurrentWindow locates the open period of the schedule at the given
// instant. One-time schedules have no window and return the zero value.
func CurrentWindow(s Schedule, now time.Time) (Window, error) {
	if s.Cadence == CadenceOneTime {
		return Window{}, nil
	}
	if _, err := ParseCadence(string(s.Cadence)); err != nil {
		return Window{}, err
	}

	now = now.UTC()
	start := s.Anchor.UTC()
	end := advance(s.Cadence, start)

	for steps := 0; end.Before(now); steps++ {
		if steps >= maxEnumeratedPeriods {
			return Window{}, ErrScheduleStalled
		}
		start = end
		next := advance(s.Cadence, start)
		if !next.After(start) {
			return Window{}, ErrScheduleStalled
		}
		end = next
	}

	total := end.Sub(start)
	if total <= 0 {
		return Window{Start: start, End: end}, nil
	}

	progress := float64(now.Sub(start)) / float64(total) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	return Window{Progress: progress, Start: start, End: end}, nil
}
