package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/recommend"
)

type fakeProfiles struct {
	rec *recommend.PerformanceRecord
	err error
}

func (f *fakeProfiles) Profile(ctx context.Context, userID uint, category string) (*recommend.PerformanceRecord, error) {
	return f.rec, f.err
}

type fakeGenerator struct {
	tips  []string
	err   error
	calls int
	weak  []string
}

func (f *fakeGenerator) GenerateTips(ctx context.Context, category string, weakTopics []string) ([]string, error) {
	f.calls++
	f.weak = weakTopics
	return f.tips, f.err
}

type fakeTipsCache struct {
	entries map[string][]string
	sets    int
}

func tipsKey(category string, weak []string) string {
	return category + ":" + strings.Join(weak, "|")
}

func (f *fakeTipsCache) Get(ctx context.Context, category string, weakTopics []string) ([]string, bool) {
	tips, ok := f.entries[tipsKey(category, weakTopics)]
	return tips, ok
}

func (f *fakeTipsCache) Set(ctx context.Context, category string, weakTopics []string, tips []string, ttl time.Duration) error {
	if f.entries == nil {
		f.entries = make(map[string][]string)
	}
	f.entries[tipsKey(category, weakTopics)] = tips
	f.sets++
	return nil
}

func TestStudyTipsService_GetTips(t *testing.T) {
	aiTips := []string{"Do this", "Then that"}
	profile := &recommend.PerformanceRecord{WeakTopics: []string{"Sprint Planning"}}
	taxonomy := recommend.NewStaticTaxonomy(recommend.DefaultSeeds())
	cfg := config.AIConfig{Timeout: time.Second, TipsCacheTTL: time.Hour}

	t.Run("ai tips are cached", func(t *testing.T) {
		gen := &fakeGenerator{tips: aiTips}
		cache := &fakeTipsCache{}
		svc := NewStudyTipsService(&fakeProfiles{rec: profile}, taxonomy, gen, cache, cfg)

		first := svc.GetTips(context.Background(), 1, "PSPO1")
		if first.Source != tipsSourceAI || !reflect.DeepEqual(first.Tips, aiTips) {
			t.Fatalf("expected ai tips, got %+v", first)
		}
		if !reflect.DeepEqual(gen.weak, []string{"Sprint Planning"}) {
			t.Errorf("generator got weak topics %v", gen.weak)
		}

		second := svc.GetTips(context.Background(), 1, "PSPO1")
		if second.Source != tipsSourceCache || !reflect.DeepEqual(second.Tips, aiTips) {
			t.Fatalf("expected cached tips, got %+v", second)
		}
		if gen.calls != 1 || cache.sets != 1 {
			t.Errorf("generator calls = %d, cache sets = %d", gen.calls, cache.sets)
		}
	})

	t.Run("generator failure falls back to defaults", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("quota exceeded")}
		cache := &fakeTipsCache{}
		svc := NewStudyTipsService(&fakeProfiles{rec: profile}, taxonomy, gen, cache, cfg)

		resp := svc.GetTips(context.Background(), 1, "PSPO1")
		if resp.Source != tipsSourceDefault {
			t.Fatalf("Source = %q, want default", resp.Source)
		}
		if !reflect.DeepEqual(resp.Tips, DefaultStudyTips([]string{"Sprint Planning"})) {
			t.Errorf("unexpected tips %v", resp.Tips)
		}
		if cache.sets != 0 {
			t.Error("default tips must not be cached")
		}
	})

	t.Run("no history uses taxonomy seed", func(t *testing.T) {
		svc := NewStudyTipsService(&fakeProfiles{err: recommend.ErrNoData}, taxonomy, nil, nil, cfg)

		resp := svc.GetTips(context.Background(), 1, "Verpleegkundig Rekenen")
		want := []string{"Dosering berekeningen", "IV druppelsnelheid"}
		if !reflect.DeepEqual(resp.WeakTopics, want) {
			t.Errorf("WeakTopics = %v, want %v", resp.WeakTopics, want)
		}
		if resp.Source != tipsSourceDefault || len(resp.Tips) != 5 {
			t.Errorf("expected five default tips, got %+v", resp)
		}
	})

	t.Run("upstream failure still answers", func(t *testing.T) {
		svc := NewStudyTipsService(&fakeProfiles{err: recommend.ErrUpstreamUnavailable}, nil, nil, nil, cfg)

		resp := svc.GetTips(context.Background(), 1, "PSPO1")
		if resp.WeakTopics == nil || len(resp.WeakTopics) != 0 {
			t.Errorf("WeakTopics = %#v, want empty slice", resp.WeakTopics)
		}
		if resp.Source != tipsSourceDefault {
			t.Errorf("Source = %q, want default", resp.Source)
		}
	})
}

func TestParseTipsList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "numbered",
			in:   "1. Review the Scrum Guide\n2) Practice sprint planning\n\n3. **Time-box** your study",
			want: []string{"Review the Scrum Guide", "Practice sprint planning", "Time-box** your study"},
		},
		{
			name: "bullets",
			in:   "- first\n* second\n• third",
			want: []string{"first", "second", "third"},
		},
		{
			name: "capped at five",
			in:   "1. a\n2. b\n3. c\n4. d\n5. e\n6. f",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "empty",
			in:   "\n  \n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTipsList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTipsList() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultStudyTips(t *testing.T) {
	tips := DefaultStudyTips([]string{"a", "b", "c", "d"})
	if len(tips) != 5 {
		t.Fatalf("expected 5 tips, got %d", len(tips))
	}
	if tips[3] != "Focus extra attention on: a, b, c" {
		t.Errorf("focus tip = %q", tips[3])
	}

	if got := DefaultStudyTips(nil)[3]; got != "Focus extra attention on: the topics you find hardest" {
		t.Errorf("focus tip without topics = %q", got)
	}
}

func TestTipsPrompt(t *testing.T) {
	p := tipsPrompt("PSPO1", []string{"Sprint Planning", "Product Backlog"})
	if !strings.Contains(p, "PSPO1") || !strings.Contains(p, "Sprint Planning, Product Backlog") {
		t.Errorf("prompt misses category or topics: %s", p)
	}
}
