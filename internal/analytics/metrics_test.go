package analytics

import (
	"math"
	"slices"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func attempt(factor string, correct bool, latency time.Duration, offset int) ActionRecord {
	return ActionRecord{
		Kind:     KindPlaceAttempt,
		FactorID: factor,
		Correct:  correct,
		Latency:  latency,
		At:       t0.Add(time.Duration(offset) * time.Second),
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalyze_Empty(t *testing.T) {
	m := Analyze(nil, nil)
	if m.Attempts != 0 || m.OverallAccuracy != 0 || m.EngagementScore != 0 {
		t.Errorf("Analyze(nil) = %+v, want zero metrics", m)
	}
	if m.StrugglingConcepts != nil || m.MasteredConcepts != nil {
		t.Errorf("expected no concepts, got %+v", m)
	}
}

func TestAnalyze_SevenOfTen(t *testing.T) {
	var actions []ActionRecord
	for i := range 10 {
		actions = append(actions, attempt("f2", i < 7, 2*time.Second, i))
	}

	m := Analyze(actions, nil)
	if !approx(m.OverallAccuracy, 0.7) {
		t.Errorf("OverallAccuracy = %v, want 0.7", m.OverallAccuracy)
	}
	if m.Attempts != 10 || m.Correct != 7 {
		t.Errorf("Attempts/Correct = %d/%d, want 10/7", m.Attempts, m.Correct)
	}
	if m.CompletionTime != 9*time.Second {
		t.Errorf("CompletionTime = %v, want 9s", m.CompletionTime)
	}
}

func TestAnalyze_IgnoresNonAttemptsForAccuracy(t *testing.T) {
	actions := []ActionRecord{
		{Kind: KindSelect, FactorID: "f2", At: t0},
		attempt("f2", true, 4*time.Second, 1),
		{Kind: KindHintRequest, FactorID: "f10", At: t0.Add(2 * time.Second)},
		attempt("f10", false, 8*time.Second, 3),
		{Kind: KindInfoView, FactorID: "f10", At: t0.Add(4 * time.Second)},
	}

	m := Analyze(actions, nil)
	if !approx(m.OverallAccuracy, 0.5) {
		t.Errorf("OverallAccuracy = %v, want 0.5", m.OverallAccuracy)
	}
	if m.AverageResponseTime != 6*time.Second {
		t.Errorf("AverageResponseTime = %v, want 6s", m.AverageResponseTime)
	}
	if !approx(m.HintUsageRate, 0.5) {
		t.Errorf("HintUsageRate = %v, want 0.5", m.HintUsageRate)
	}
	if m.CompletionTime != 4*time.Second {
		t.Errorf("CompletionTime = %v, want 4s", m.CompletionTime)
	}
}

func TestAnalyze_Concepts(t *testing.T) {
	concepts := ConceptMap{"f2": "propagation", "f10": "propagation", "f12": "contact-activation", "tf": "initiation"}
	actions := []ActionRecord{
		// propagation: 3/3 -> mastered
		attempt("f2", true, time.Second, 0),
		attempt("f10", true, time.Second, 1),
		attempt("f2", true, time.Second, 2),
		// contact-activation: 2 failures -> struggling
		attempt("f12", false, time.Second, 3),
		attempt("f12", false, time.Second, 4),
		attempt("f12", true, time.Second, 5),
		// initiation: one failure, neither
		attempt("tf", false, time.Second, 6),
		// unmapped factor forms its own concept
		attempt("x", false, time.Second, 7),
		attempt("x", false, time.Second, 8),
	}

	m := Analyze(actions, concepts)
	if want := []string{"contact-activation", "x"}; !slices.Equal(m.StrugglingConcepts, want) {
		t.Errorf("StrugglingConcepts = %v, want %v", m.StrugglingConcepts, want)
	}
	if want := []string{"propagation"}; !slices.Equal(m.MasteredConcepts, want) {
		t.Errorf("MasteredConcepts = %v, want %v", m.MasteredConcepts, want)
	}
}

func TestAnalyze_MasteryBoundary(t *testing.T) {
	// 9 of 10 is exactly 90% and counts as mastered.
	var actions []ActionRecord
	for i := range 10 {
		actions = append(actions, attempt("f9", i != 0, time.Second, i))
	}
	m := Analyze(actions, ConceptMap{"f9": "amplification"})
	if !slices.Contains(m.MasteredConcepts, "amplification") {
		t.Errorf("expected amplification mastered, got %v", m.MasteredConcepts)
	}
	if len(m.StrugglingConcepts) != 0 {
		t.Errorf("one failure should not be struggling, got %v", m.StrugglingConcepts)
	}
}

func TestAnalyze_Engagement(t *testing.T) {
	actions := []ActionRecord{
		attempt("a", true, time.Second, 0),    // quick
		attempt("a", true, 2*time.Second, 1),  // quick
		attempt("a", true, 3*time.Second, 2),  // at threshold, not quick
		attempt("a", true, 10*time.Second, 3), // slow
		{Kind: KindInfoView, FactorID: "a", At: t0},
	}
	m := Analyze(actions, nil)
	// info 1/4, quick 2/4 -> (0.25 + 0.5) / 2
	if !approx(m.EngagementScore, 0.375) {
		t.Errorf("EngagementScore = %v, want 0.375", m.EngagementScore)
	}

	for range 10 {
		actions = append(actions, ActionRecord{Kind: KindInfoView, FactorID: "a", At: t0})
	}
	m = Analyze(actions, nil)
	// info rate is capped at 1
	if !approx(m.EngagementScore, 0.75) {
		t.Errorf("EngagementScore = %v, want 0.75", m.EngagementScore)
	}
}

func TestLog_AppendOnlyCopies(t *testing.T) {
	l := NewLog(attempt("a", true, time.Second, 0))
	got := l.Actions()
	got[0].Correct = false
	if !l.Actions()[0].Correct {
		t.Error("mutating a snapshot changed the log")
	}
}

func TestLog_ForSession(t *testing.T) {
	l := NewLog()
	for i, sid := range []string{"s1", "s2", "s1"} {
		rec := attempt("a", true, time.Second, i)
		rec.SessionID = sid
		l.RecordAction(rec)
	}
	if got := len(l.ForSession("s1")); got != 2 {
		t.Errorf("ForSession(s1) = %d records, want 2", got)
	}
}

func TestLog_ConcurrentRecord(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordAction(attempt("a", i%2 == 0, time.Second, i))
		}()
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("Len = %d, want 50", l.Len())
	}
}

func TestTee(t *testing.T) {
	a, b := NewLog(), NewLog()
	Tee(a, nil, b).RecordAction(attempt("a", true, 0, 0))
	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("Tee lens = %d/%d, want 1/1", a.Len(), b.Len())
	}
}
