package engine

import (
	"errors"
	"time"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
)

// ErrNoSelection is returned by PlaceByClick when no factor is armed.
var ErrNoSelection = errors.New("engine: no factor selected")

// Select toggles the armed factor. Selecting the armed factor again clears
// the selection. Unknown and placed factors are ignored.
func (e *Engine) Select(id string) {
	f, ok := e.s.Factors[id]
	if !ok {
		return
	}
	if e.s.Selected == id {
		e.s.Selected = ""
		e.armedAt = time.Time{}
		e.emit(SelectionChanged{})
		return
	}
	if f.Placed() {
		return
	}

	now := e.now()
	e.s.Selected = id
	e.armedAt = now
	e.record(analytics.KindSelect, id, now.Sub(e.lastInput), false)
	e.lastInput = now
	e.emit(SelectionChanged{FactorID: id})
}

// PlaceByClick places the armed factor on the slot of targetID. Placement is
// identity based: it succeeds only when targetID is the armed factor. A
// mismatch keeps the selection so the learner can try another slot.
func (e *Engine) PlaceByClick(targetID string) error {
	armed := e.s.Selected
	if armed == "" {
		return ErrNoSelection
	}
	if _, ok := e.s.Factors[targetID]; !ok {
		return nil
	}

	latency := e.latencySince(e.armedAt)
	if targetID == armed {
		e.s.Selected = ""
		e.armedAt = time.Time{}
		e.emit(SelectionChanged{})
		e.commitPlacement(armed, latency)
		return nil
	}

	e.log.Debug("click placement missed", "factor", armed, "target", targetID)
	e.record(analytics.KindPlaceAttempt, armed, latency, false)
	e.emit(PlacementFailed{FactorID: armed, TargetID: targetID})
	return nil
}

// BeginDrag stamps the start of a drag gesture for latency measurement.
func (e *Engine) BeginDrag(id string) {
	f, ok := e.s.Factors[id]
	if !ok || f.Placed() {
		return
	}
	e.dragStart[id] = e.now()
}

// PlaceByDrag drops factor id at p. A drop within tolerance on both axes
// snaps to the target. Otherwise the raw drop point is kept and the factor
// stays unplaced.
func (e *Engine) PlaceByDrag(id string, p catalog.Point) {
	f, ok := e.s.Factors[id]
	if !ok || f.Placed() {
		return
	}

	start, ok := e.dragStart[id]
	if !ok && e.s.Selected == id {
		start = e.armedAt
	}
	delete(e.dragStart, id)
	latency := e.latencySince(start)

	if p.Within(f.Target, e.rules.Tolerance) {
		if e.s.Selected == id {
			e.s.Selected = ""
			e.armedAt = time.Time{}
			e.emit(SelectionChanged{})
		}
		e.commitPlacement(id, latency)
		return
	}

	drop := p
	f.Current = &drop
	e.log.Debug("drag placement outside tolerance", "factor", id, "drop", p.String(), "target", f.Target.String())
	e.record(analytics.KindPlaceAttempt, id, latency, false)
	e.emit(PlacementFailed{FactorID: id})
}

// commitPlacement is the single success path shared by click and drag.
func (e *Engine) commitPlacement(id string, latency time.Duration) {
	f := e.s.Factors[id]
	target := f.Target
	f.Current = &target
	e.s.Score += e.rules.BaseAward

	if e.s.Emergency {
		e.s.Status = min(MaxStatus, e.s.Status+e.rules.Replenish)
		e.emit(StatusChanged{Status: e.s.Status, Countdown: e.s.Countdown})
	}

	e.log.Debug("placement committed", "factor", id, "score", e.s.Score, "latency", latency)
	e.record(analytics.KindPlaceAttempt, id, latency, true)
	e.emit(PlacementSucceeded{FactorID: id, Score: e.s.Score})
	e.checkCompletion()
}

// ResetIncorrect clears every attempted but unplaced factor. Placed factors
// and the score are untouched.
func (e *Engine) ResetIncorrect() int {
	n := 0
	for _, id := range e.s.Order {
		f := e.s.Factors[id]
		if f.Current != nil && !f.Placed() {
			f.Current = nil
			n++
		}
	}
	return n
}

// Hint is the guidance returned for a factor.
type Hint struct {
	FactorID string
	Pathway  catalog.Pathway
	Target   catalog.Point
	Concept  string
}

// RequestHint returns placement guidance for a factor and records a hint
// request. Placement state is unchanged.
func (e *Engine) RequestHint(id string) (Hint, bool) {
	f, ok := e.s.Factors[id]
	if !ok {
		return Hint{}, false
	}
	e.record(analytics.KindHintRequest, id, 0, false)
	return Hint{FactorID: id, Pathway: f.Pathway, Target: f.Target, Concept: f.Concept}, true
}

// ViewInfo returns the catalog record for a factor and records an info view.
func (e *Engine) ViewInfo(id string) (catalog.Factor, bool) {
	f, ok := e.cat.Get(id)
	if !ok {
		return catalog.Factor{}, false
	}
	e.record(analytics.KindInfoView, id, 0, false)
	return f, true
}

func (e *Engine) latencySince(start time.Time) time.Duration {
	now := e.now()
	if start.IsZero() {
		start = e.lastInput
	}
	e.lastInput = now
	return max(0, now.Sub(start))
}
