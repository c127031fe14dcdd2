package recommend

import (
	"math"
	"sort"
)

const (
	minVelocityPoints = 3

	// recommended difficulty rules
	recentJumpMargin     = 0.10
	masteryAccuracy      = 0.80
	strugglingAccuracy   = 0.60
	fastLearnerVelocity  = 0.05
	fastLearnerAccuracy  = 0.75
	confidenceSampleSize = 50.0
	stableVelocity       = 0.02
	stabilityBonus       = 0.2
	accurateThreshold    = 0.7
	accuracyBonus        = 0.3

	defaultMinTopicAttempts = 3
	maxTopicsPerSide        = 3
)

type AnalyzeOptions struct {
	// MinTopicAttempts is the number of answers a topic needs before its own
	// accuracy replaces the taxonomy seed.
	MinTopicAttempts int
}

// Analyze derives difficulty, trend, topics and confidence for a record. It returns
// a new record and leaves the input untouched, so it is safe on cached values.
func Analyze(rec *PerformanceRecord, taxonomy Taxonomy, opts AnalyzeOptions) *PerformanceRecord {
	if opts.MinTopicAttempts <= 0 {
		opts.MinTopicAttempts = defaultMinTopicAttempts
	}

	out := rec.clone()
	accuracy := out.OverallAccuracy()
	recent := out.RecentAccuracy
	if out.TotalAttempts == 0 {
		recent = accuracy
	}

	out.DifficultyLevel = DifficultyLevel(accuracy, recent)
	out.LearningVelocity = LearningVelocity(out.HistoricalAccuracy)
	out.WeakTopics, out.StrongTopics = topicStrengths(out, taxonomy, opts.MinTopicAttempts)
	out.RecommendedDifficulty = RecommendedDifficulty(accuracy, recent, out.DifficultyLevel, out.LearningVelocity)
	out.ConfidenceScore = ConfidenceScore(out.TotalAttempts, accuracy, out.LearningVelocity)
	return out
}

// DifficultyLevel maps the mean of overall and recent accuracy onto the 1-5 scale.
func DifficultyLevel(accuracy, recentAccuracy float64) int {
	avg := (accuracy + recentAccuracy) / 2

	switch {
	case avg >= 0.9:
		return 5
	case avg >= 0.8:
		return 4
	case avg >= 0.7:
		return 3
	case avg >= 0.6:
		return 2
	default:
		return 1
	}
}

// LearningVelocity is the least-squares slope of the series against its index.
// Fewer than three points carry no trend and yield 0.
func LearningVelocity(series []float64) float64 {
	n := len(series)
	if n < minVelocityPoints {
		return 0.0
	}

	var sumX, sumY float64
	for i, y := range series {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, den float64
	for i, y := range series {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0.0
	}
	return num / den
}

// RecommendedDifficulty applies the adjustment rules in priority order.
func RecommendedDifficulty(accuracy, recentAccuracy float64, level int, velocity float64) int {
	switch {
	case recentAccuracy > accuracy+recentJumpMargin && accuracy > masteryAccuracy:
		return clampDifficulty(level + 1)
	case recentAccuracy < accuracy-recentJumpMargin || accuracy < strugglingAccuracy:
		return clampDifficulty(level - 1)
	case velocity > fastLearnerVelocity && accuracy > fastLearnerAccuracy:
		return clampDifficulty(level + 1)
	default:
		return clampDifficulty(level)
	}
}

// ConfidenceScore rates how much the profile can be trusted, in [0,1].
func ConfidenceScore(totalAttempts int, accuracy, velocity float64) float64 {
	sample := math.Min(1.0, math.Max(0, float64(totalAttempts))/confidenceSampleSize)

	var bonus float64
	if math.Abs(velocity) < stableVelocity {
		bonus += stabilityBonus
	}
	if accuracy > accurateThreshold {
		bonus += accuracyBonus
	}
	return math.Min(1.0, sample+bonus)
}

func clampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// topicStrengths ranks topics by their own accuracy when there is enough per-topic
// data and falls back to the taxonomy seed otherwise.
func topicStrengths(rec *PerformanceRecord, taxonomy Taxonomy, minAttempts int) (weak, strong []string) {
	var eligible []TopicStat
	for _, ts := range rec.TopicStats {
		if ts.Attempts >= minAttempts {
			eligible = append(eligible, ts)
		}
	}

	if len(eligible) < 2 {
		if taxonomy == nil {
			return []string{}, []string{}
		}
		weak, strong = taxonomy.TopicSeed(rec.Category)
		if weak == nil {
			weak = []string{}
		}
		if strong == nil {
			strong = []string{}
		}
		return weak, strong
	}

	k := len(eligible) / 2
	if k > maxTopicsPerSide {
		k = maxTopicsPerSide
	}

	asc := append([]TopicStat(nil), eligible...)
	sort.SliceStable(asc, func(i, j int) bool {
		ai, aj := asc[i].Accuracy(), asc[j].Accuracy()
		if ai != aj {
			return ai < aj
		}
		return asc[i].Topic < asc[j].Topic
	})
	// 强项只从剩余主题中选，避免同一主题同时出现在两侧
	rest := append([]TopicStat(nil), asc[k:]...)
	sort.SliceStable(rest, func(i, j int) bool {
		ai, aj := rest[i].Accuracy(), rest[j].Accuracy()
		if ai != aj {
			return ai > aj
		}
		return rest[i].Topic < rest[j].Topic
	})

	weak = make([]string, 0, k)
	strong = make([]string, 0, k)
	for i := 0; i < k; i++ {
		weak = append(weak, asc[i].Topic)
		strong = append(strong, rest[i].Topic)
	}
	return weak, strong
}
