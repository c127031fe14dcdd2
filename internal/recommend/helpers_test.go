package recommend

import (
	"math"
	"time"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }
func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
func at(i int) time.Time { return baseTime.Add(time.Duration(i) * time.Minute) }
func answer(i int, ok bool) AnswerEvent {
	return AnswerEvent{Correct: boolPtr(ok), ResponseTime: floatPtr(30), Timestamp: at(i)}
}

// history builds chronologically ordered answers from outcomes.
func history(outcomes ...bool) []AnswerEvent {
	out := make([]AnswerEvent, len(outcomes))
	for i, ok := range outcomes {
		out[i] = answer(i, ok)
	}
	return out
}

// repeat returns n copies of v.
func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]bool) []bool {
	var out []bool
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
