package engine

// Start begins the session clock. With emergency set the patient status is
// reset to the starting buffer and the scenario countdown begins. Calling
// Start on a running session switches emergency mode on without touching
// the elapsed time.
//
// Start advances the epoch; tick sources must be re-armed with Epoch().
func (e *Engine) Start(emergency bool) {
	if e.s.Completed {
		return
	}
	if !e.s.Started {
		e.s.Started = true
		e.s.StartedAt = e.now()
		e.lastInput = e.s.StartedAt
	}
	e.epoch++
	if emergency {
		e.s.Emergency = true
		e.s.EmergencyOutcome = ""
		e.s.Status = e.rules.EmergencyStartStatus
		e.s.Countdown = e.rules.ScenarioSeconds
		e.emit(StatusChanged{Status: e.s.Status, Countdown: e.s.Countdown})
	}
	e.log.Info("session started", "session", e.s.ID, "emergency", emergency, "epoch", e.epoch)
}

// Epoch identifies the current tick generation. Ticks carrying an older
// epoch are ignored.
func (e *Engine) Epoch() uint64 { return e.epoch }

// Tick advances the session clock by one period. It reports whether the
// tick applied; stale, pre-start and post-completion ticks do not.
func (e *Engine) Tick(epoch uint64) bool {
	if epoch != e.epoch || !e.s.Started || e.s.Completed {
		return false
	}
	e.s.Elapsed++
	if e.s.Emergency {
		e.decay()
	}
	return true
}

// StopEmergency halts decay. The patient status keeps its value.
func (e *Engine) StopEmergency() {
	if !e.s.Emergency {
		return
	}
	e.s.Emergency = false
	e.log.Info("emergency stopped", "session", e.s.ID, "status", e.s.Status)
}

// Reset discards the session and starts over with every factor unattempted
// and a zero score. Queued ticks from before the reset never apply.
func (e *Engine) Reset() {
	old := e.s.ID
	e.s = e.newSession()
	e.epoch++
	e.log.Info("session reset", "previous", old, "session", e.s.ID)
}

// Emergency reports whether decay is active.
func (e *Engine) Emergency() bool { return e.s.Emergency }

// Status returns the patient status.
func (e *Engine) Status() int { return e.s.Status }

// Countdown returns the remaining emergency scenario seconds.
func (e *Engine) Countdown() int { return e.s.Countdown }
