package recommend

import "time"

// Action is the kind of study step a Recommendation asks for.
type Action string

const (
	ActionReview       Action = "review"
	ActionPracticeMore Action = "practice_more"
	ActionAdvance      Action = "advance"
	ActionBreak        Action = "break"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5

	// MaxResponseSeconds caps response times and next-question estimates.
	MaxResponseSeconds = 86400
)

// AnswerEvent is one raw answer from the history store.
// Nullable fields mirror nullable columns; a record missing any of them is malformed.
type AnswerEvent struct {
	Correct      *bool
	ResponseTime *float64
	Timestamp    time.Time
	Topic        string
}

// Valid reports whether the event carries every field the extractor needs.
func (e AnswerEvent) Valid() bool {
	return checkEvent(e) == nil
}

// TopicStat holds per-topic answer counts for one category.
type TopicStat struct {
	Topic    string `json:"topic"`
	Attempts int    `json:"attempts"`
	Correct  int    `json:"correct"`
}

func (t TopicStat) Accuracy() float64 {
	if t.Attempts == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Attempts)
}

// HistorySummary aggregates every valid answer of a user+category.
type HistorySummary struct {
	TotalAttempts       int
	CorrectAttempts     int
	AverageResponseTime float64
	TopicStats          []TopicStat
}

// History is one read from a HistorySource.
type History struct {
	// Events are answers oldest first. A store that caps reads returns only the
	// newest ones.
	Events []AnswerEvent
	// Summary covers the whole history; set only when Events was capped.
	Summary *HistorySummary
}

// PerformanceRecord is the per user+category profile. The raw fields come from the
// extractor; the derived ones are filled in by Analyze.
type PerformanceRecord struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`

	TotalAttempts       int         `json:"total_attempts"`
	CorrectAttempts     int         `json:"correct_attempts"`
	RecentAccuracy      float64     `json:"recent_accuracy"`
	AverageResponseTime float64     `json:"average_response_time"`
	HistoricalAccuracy  []float64   `json:"historical_accuracy_series"`
	TopicStats          []TopicStat `json:"topic_stats,omitempty"`
	SkippedRecords      int         `json:"skipped_records"`

	DifficultyLevel       int      `json:"difficulty_level"`
	LearningVelocity      float64  `json:"learning_velocity"`
	WeakTopics            []string `json:"weak_topics"`
	StrongTopics          []string `json:"strong_topics"`
	RecommendedDifficulty int      `json:"recommended_difficulty"`
	ConfidenceScore       float64  `json:"confidence_score"`
}

// OverallAccuracy is correct/total over the whole history, 0 with no attempts.
func (r *PerformanceRecord) OverallAccuracy() float64 {
	if r.TotalAttempts <= 0 {
		return 0
	}
	return float64(r.CorrectAttempts) / float64(r.TotalAttempts)
}

// clone returns a deep copy so analysis never mutates a cached or caller-owned record.
func (r *PerformanceRecord) clone() *PerformanceRecord {
	c := *r
	c.HistoricalAccuracy = append([]float64(nil), r.HistoricalAccuracy...)
	c.TopicStats = append([]TopicStat(nil), r.TopicStats...)
	c.WeakTopics = append([]string(nil), r.WeakTopics...)
	c.StrongTopics = append([]string(nil), r.StrongTopics...)
	return &c
}

type Recommendation struct {
	UserID               string   `json:"user_id"`
	Category             string   `json:"category"`
	Action               Action   `json:"action"`
	Reason               string   `json:"reason"`
	SuggestedTopics      []string `json:"suggested_topics"`
	DifficultyAdjustment int      `json:"difficulty_adjustment"`
	EstimatedMinutes     int      `json:"estimated_minutes"`
	Confidence           float64  `json:"confidence"`
}

// SessionState is the live quiz session tally used for next-question tuning.
type SessionState struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type NextQuestionParams struct {
	Difficulty    int      `json:"difficulty"`
	Topics        []string `json:"topics"`
	EstimatedTime int      `json:"estimated_time"`
}

// RecommendationSet is the result of a multi-category request. Categories without
// history land in NoData; categories whose fetch failed land in Unavailable.
type RecommendationSet struct {
	Items       []Recommendation `json:"items"`
	NoData      []string         `json:"no_data,omitempty"`
	Unavailable map[string]error `json:"-"`
}
