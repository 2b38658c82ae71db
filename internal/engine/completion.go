package engine

func (e *Engine) allPlaced() bool {
	if len(e.s.Factors) == 0 {
		return false
	}
	for _, f := range e.s.Factors {
		if !f.Placed() {
			return false
		}
	}
	return true
}

// checkCompletion awards the completion bonuses on the first transition to
// all placed. Later calls are no-ops until Reset.
func (e *Engine) checkCompletion() {
	if e.s.Completed || !e.allPlaced() {
		return
	}

	timeBonus := max(0, e.rules.TargetSeconds-e.s.Elapsed) * e.rules.TimeBonusRate
	emergencyBonus := 0
	if e.s.Emergency {
		emergencyBonus = e.rules.EmergencyBonus
	}
	e.s.Score += timeBonus + emergencyBonus
	e.s.Completed = true

	res := LevelCompleted{
		Score:          e.s.Score,
		Elapsed:        e.s.Elapsed,
		Emergency:      e.s.Emergency,
		TimeBonus:      timeBonus,
		EmergencyBonus: emergencyBonus,
	}
	e.s.Result = &res
	e.log.Info("level completed", "session", e.s.ID, "score", res.Score, "elapsed", res.Elapsed, "emergency", res.Emergency)
	e.emit(res)
}
