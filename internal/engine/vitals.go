package engine

// decay applies one tick of patient status loss and countdown. The emergency
// ends when either reaches zero.
func (e *Engine) decay() {
	e.s.Status = max(0, e.s.Status-e.rules.DecayPerTick)
	e.s.Countdown = max(0, e.s.Countdown-1)
	e.emit(StatusChanged{Status: e.s.Status, Countdown: e.s.Countdown})

	switch {
	case e.s.Status == 0:
		e.endEmergency(ReasonPatientLost)
	case e.s.Countdown == 0:
		e.endEmergency(ReasonTimeUp)
	}
}

func (e *Engine) endEmergency(reason string) {
	e.s.Emergency = false
	e.s.EmergencyOutcome = reason
	e.log.Info("emergency ended", "session", e.s.ID, "reason", reason, "status", e.s.Status)
	e.emit(EmergencyEnded{Reason: reason, Status: e.s.Status})
}
