package recommend

import (
	"fmt"
	"math"
	"sort"
)

const (
	defaultRecentWindow = 10
	defaultBucketSize   = 10
)

type ExtractOptions struct {
	// RecentWindow is the number of most recent answers behind RecentAccuracy.
	RecentWindow int
	// BucketSize is the number of answers per point of HistoricalAccuracy.
	BucketSize int
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	if o.RecentWindow <= 0 {
		o.RecentWindow = defaultRecentWindow
	}
	if o.BucketSize <= 0 {
		o.BucketSize = defaultBucketSize
	}
	return o
}

// checkEvent explains why an event cannot be used.
func checkEvent(e AnswerEvent) error {
	switch {
	case e.Correct == nil:
		return fmt.Errorf("%w: missing correct flag", ErrMalformedRecord)
	case e.ResponseTime == nil:
		return fmt.Errorf("%w: missing response time", ErrMalformedRecord)
	case math.IsNaN(*e.ResponseTime) || math.IsInf(*e.ResponseTime, 0):
		return fmt.Errorf("%w: response time is not finite", ErrMalformedRecord)
	case *e.ResponseTime < 0:
		return fmt.Errorf("%w: negative response time %.2f", ErrMalformedRecord, *e.ResponseTime)
	case e.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrMalformedRecord)
	}
	return nil
}

// Extract turns raw history into the numeric fields of a PerformanceRecord.
// Malformed records are skipped one by one; if nothing usable is left the
// result is ErrNoData so the category is dropped rather than scored as zero.
func Extract(userID, category string, history []AnswerEvent, opts ExtractOptions) (*PerformanceRecord, error) {
	opts = opts.withDefaults()

	valid := make([]AnswerEvent, 0, len(history))
	skipped := 0
	for _, e := range history {
		if !e.Valid() {
			skipped++
			continue
		}
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	rec := &PerformanceRecord{
		UserID:         userID,
		Category:       category,
		TotalAttempts:  len(valid),
		SkippedRecords: skipped,
	}

	var totalTime float64
	topics := make(map[string]*TopicStat)
	var topicOrder []string
	for _, e := range valid {
		if *e.Correct {
			rec.CorrectAttempts++
		}
		totalTime += *e.ResponseTime

		if e.Topic == "" {
			continue
		}
		ts, ok := topics[e.Topic]
		if !ok {
			ts = &TopicStat{Topic: e.Topic}
			topics[e.Topic] = ts
			topicOrder = append(topicOrder, e.Topic)
		}
		ts.Attempts++
		if *e.Correct {
			ts.Correct++
		}
	}
	rec.AverageResponseTime = totalTime / float64(len(valid))

	recent := valid
	if len(recent) > opts.RecentWindow {
		recent = recent[len(recent)-opts.RecentWindow:]
	}
	rec.RecentAccuracy = accuracyOf(recent)

	// 只统计完整的批次，最后不足一批的答题不计入趋势
	for start := 0; start+opts.BucketSize <= len(valid); start += opts.BucketSize {
		rec.HistoricalAccuracy = append(rec.HistoricalAccuracy, accuracyOf(valid[start:start+opts.BucketSize]))
	}

	sort.Strings(topicOrder)
	for _, t := range topicOrder {
		rec.TopicStats = append(rec.TopicStats, *topics[t])
	}

	return rec, nil
}

// applySummary moves the whole-history counts of a capped read onto a record
// extracted from its tail. The recent window and the bucket series stay on the tail.
func applySummary(rec *PerformanceRecord, s *HistorySummary) {
	if s == nil || s.TotalAttempts < rec.TotalAttempts {
		return
	}
	rec.TotalAttempts = s.TotalAttempts
	rec.CorrectAttempts = min(max(s.CorrectAttempts, 0), s.TotalAttempts)
	rec.AverageResponseTime = s.AverageResponseTime
	if len(s.TopicStats) > 0 {
		rec.TopicStats = append([]TopicStat(nil), s.TopicStats...)
		sort.Slice(rec.TopicStats, func(i, j int) bool {
			return rec.TopicStats[i].Topic < rec.TopicStats[j].Topic
		})
	}
}

func accuracyOf(events []AnswerEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	correct := 0
	for _, e := range events {
		if *e.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(events))
}
