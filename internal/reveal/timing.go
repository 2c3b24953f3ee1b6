package reveal

import "time"

// Timing holds the durations of one reveal cycle.
type Timing struct {
	// InitialDelay is the wait before the first line starts revealing.
	InitialDelay time.Duration
	// Stagger separates the start of consecutive line reveals.
	Stagger time.Duration
	// LineDuration is how long a single line takes to become fully visible.
	LineDuration time.Duration
	// Hold is the dwell with every line visible.
	Hold time.Duration
	// HideDuration is the group exit transition.
	HideDuration time.Duration
	// Pause is the minimum gap between the end of Hidden and the next reveal.
	Pause time.Duration
	// Period is the minimum distance between the starts of two cycles. Zero
	// disables it.
	Period time.Duration
}

// DefaultTiming returns the hero text cadence.
func DefaultTiming() Timing {
	return Timing{
		InitialDelay: 200 * time.Millisecond,
		Stagger:      400 * time.Millisecond,
		LineDuration: 600 * time.Millisecond,
		Hold:         3 * time.Second,
		HideDuration: 300 * time.Millisecond,
		Pause:        800 * time.Millisecond,
		Period:       6 * time.Second,
	}
}

// Step is one transition of a cycle, taken After the previous one.
type Step struct {
	After time.Duration
	Phase Phase
	// Line is the index of the line that starts revealing, or -1.
	Line int
}

// Plan returns the steps of one cycle over n lines. The first step always
// has After == 0; Gap gives the wait before it on every cycle but the first.
func Plan(n int, t Timing) []Step {
	steps := make([]Step, 0, n+4)
	steps = append(steps, Step{Phase: Revealing, Line: -1})
	settle := time.Duration(0)
	for i := range n {
		after := t.Stagger
		if i == 0 {
			after = t.InitialDelay
		}
		steps = append(steps, Step{After: after, Phase: Revealing, Line: i})
		settle = t.LineDuration
	}
	steps = append(steps,
		Step{After: settle, Phase: Held, Line: -1},
		Step{After: t.Hold, Phase: Hiding, Line: -1},
		Step{After: t.HideDuration, Phase: Hidden, Line: -1},
	)
	return steps
}

// Gap returns the wait between the final Hidden step of a cycle and the
// Revealing step of the next.
func (t Timing) Gap(n int) time.Duration {
	var busy time.Duration
	for _, st := range Plan(n, t) {
		busy += st.After
	}
	gap := max(t.Pause, t.Period-busy)
	if busy+gap <= 0 {
		// a zero-length cycle would spin
		return time.Millisecond
	}
	return max(gap, 0)
}
