package recommend

import (
	"fmt"
	"math"
)

const (
	minAttemptsForAdvice = 20
	strugglingRecent     = 0.60
	excellingRecent      = 0.85
	masteredAccuracy     = 0.90
	plateauVelocity      = 0.01

	sessionRaiseAccuracy = 0.8
	sessionLowerAccuracy = 0.5
	sessionFocusAccuracy = 0.6
	responseTimeBuffer   = 1.1

	maxSuggestedTopics = 3
)

const (
	labelAdvancedTopics    = "Advanced topics"
	labelNewChallenges     = "New challenges"
	labelContinueTopics    = "Continue current topics"
	labelNewCategories     = "New categories"
	labelReviewChallenging = "Review challenging topics"
	labelGeneralPractice   = "General practice"
	labelGeneral           = "general"
	labelBasics            = "basics"
)

// DefaultNextQuestion is served to users with no history in a category.
func DefaultNextQuestion() NextQuestionParams {
	return NextQuestionParams{
		Difficulty:    2,
		Topics:        []string{labelBasics},
		EstimatedTime: 45,
	}
}

// Recommend maps an analyzed record onto exactly one Recommendation. The rules are a
// priority table: the first matching row wins.
func Recommend(rec *PerformanceRecord) Recommendation {
	accuracy := rec.OverallAccuracy()
	out := Recommendation{
		UserID:     rec.UserID,
		Category:   rec.Category,
		Confidence: rec.ConfidenceScore,
	}

	switch {
	case rec.RecentAccuracy < strugglingRecent && rec.TotalAttempts >= minAttemptsForAdvice:
		out.Action = ActionReview
		out.Reason = fmt.Sprintf("Recent accuracy (%.1f%%) is below %.0f%% over %d attempts; review the fundamentals",
			rec.RecentAccuracy*100, strugglingRecent*100, rec.TotalAttempts)
		out.DifficultyAdjustment = -1
		out.SuggestedTopics = headOf(rec.WeakTopics, 3)
		out.EstimatedMinutes = 30

	case rec.RecentAccuracy > excellingRecent && rec.LearningVelocity > 0:
		out.Action = ActionAdvance
		out.Reason = fmt.Sprintf("Excellent recent accuracy (%.1f%%) with a positive trend (%+.3f per session)",
			rec.RecentAccuracy*100, rec.LearningVelocity)
		out.DifficultyAdjustment = 1
		out.SuggestedTopics = []string{labelAdvancedTopics, labelNewChallenges}
		out.EstimatedMinutes = 25

	case rec.TotalAttempts < minAttemptsForAdvice:
		out.Action = ActionPracticeMore
		out.Reason = fmt.Sprintf("Only %d attempts so far; %d are needed for an accurate recommendation",
			rec.TotalAttempts, minAttemptsForAdvice)
		out.DifficultyAdjustment = 0
		out.SuggestedTopics = []string{labelContinueTopics}
		out.EstimatedMinutes = 20

	case accuracy > masteredAccuracy && rec.LearningVelocity < plateauVelocity:
		out.Action = ActionBreak
		out.Reason = fmt.Sprintf("High mastery (%.1f%%) with a flat trend (%+.3f); take a break or explore new topics",
			accuracy*100, rec.LearningVelocity)
		out.DifficultyAdjustment = 0
		out.SuggestedTopics = []string{labelNewCategories, labelReviewChallenging}
		out.EstimatedMinutes = 15

	default:
		out.Action = ActionPracticeMore
		out.Reason = fmt.Sprintf("Steady progress; keep practicing to improve from %.1f%%", accuracy*100)
		out.DifficultyAdjustment = 0
		out.SuggestedTopics = append(headOf(rec.WeakTopics, 2), labelGeneralPractice)
		out.EstimatedMinutes = 25
	}

	if len(out.SuggestedTopics) > maxSuggestedTopics {
		out.SuggestedTopics = out.SuggestedTopics[:maxSuggestedTopics]
	}
	return out
}

// NextQuestion blends the long-term profile with the live session. A nil record
// means the user never answered in this category.
func NextQuestion(rec *PerformanceRecord, session *SessionState) NextQuestionParams {
	if rec == nil {
		return DefaultNextQuestion()
	}

	sessionAccuracy := 1.0
	if session != nil && session.Total > 0 {
		sessionAccuracy = float64(session.Correct) / float64(session.Total)
	}

	base := rec.RecommendedDifficulty
	target := base
	switch {
	case sessionAccuracy > sessionRaiseAccuracy:
		target = clampDifficulty(base + 1)
	case sessionAccuracy < sessionLowerAccuracy:
		target = clampDifficulty(base - 1)
	default:
		target = clampDifficulty(base)
	}

	var topics []string
	if sessionAccuracy < sessionFocusAccuracy {
		topics = headOf(rec.WeakTopics, 2)
	} else {
		topics = append(headOf(rec.WeakTopics, 1), labelGeneral)
	}

	return NextQuestionParams{
		Difficulty:    target,
		Topics:        topics,
		EstimatedTime: estimatedSeconds(rec.AverageResponseTime),
	}
}

// estimatedSeconds pads the average answer time, clamped to [0, MaxResponseSeconds].
func estimatedSeconds(avg float64) int {
	est := avg * responseTimeBuffer
	switch {
	case math.IsNaN(est) || est <= 0:
		return 0
	case est >= MaxResponseSeconds:
		return MaxResponseSeconds
	}
	return int(math.Round(est))
}

// headOf copies at most n leading items.
func headOf(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}
