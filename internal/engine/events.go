package engine

// Event is a typed domain event emitted by the Engine.
type Event interface {
	isEvent()
}

// PlacementSucceeded is emitted once per committed placement.
type PlacementSucceeded struct {
	FactorID string
	Score    int
}

// PlacementFailed is emitted for a wrong click or an out-of-tolerance drop.
type PlacementFailed struct {
	FactorID string
	// TargetID is the clicked slot for click placement, empty for drag.
	TargetID string
}

// StatusChanged reports the patient status after a decay or replenish step.
type StatusChanged struct {
	Status    int
	Countdown int
}

// LevelCompleted is the terminal event of a session. Emitted exactly once.
type LevelCompleted struct {
	Score          int
	Elapsed        int
	Emergency      bool
	TimeBonus      int
	EmergencyBonus int
}

// SelectionChanged reports the armed factor; empty means none.
type SelectionChanged struct {
	FactorID string
}

// Reasons an emergency ends before completion.
const (
	ReasonPatientLost = "patient-lost"
	ReasonTimeUp      = "time-up"
)

// EmergencyEnded is emitted when decay halts because the patient status or
// the scenario countdown ran out.
type EmergencyEnded struct {
	Reason string
	Status int
}

func (PlacementSucceeded) isEvent() {}
func (PlacementFailed) isEvent()    {}
func (StatusChanged) isEvent()      {}
func (LevelCompleted) isEvent()     {}
func (SelectionChanged) isEvent()   {}
func (EmergencyEnded) isEvent()     {}

// Listener receives engine events synchronously, in emission order.
type Listener func(Event)
