package engine

// Rules are the scoring and resource constants of a level.
type Rules struct {
	// BaseAward is added to the score for each correct placement.
	BaseAward int `yaml:"base_award"`

	// Tolerance is the per-axis window (inclusive) for drag placement.
	Tolerance int `yaml:"tolerance"`

	// TargetSeconds and TimeBonusRate define the completion time bonus.
	TargetSeconds int `yaml:"target_seconds"`
	TimeBonusRate int `yaml:"time_bonus_rate"`

	// EmergencyBonus is awarded on completion while emergency mode is active.
	EmergencyBonus int `yaml:"emergency_bonus"`

	// EmergencyStartStatus is the patient status when emergency mode begins.
	EmergencyStartStatus int `yaml:"emergency_start_status"`

	// DecayPerTick is subtracted from the patient status each tick.
	DecayPerTick int `yaml:"decay_per_tick"`

	// Replenish is added to the patient status on each correct placement.
	Replenish int `yaml:"replenish"`

	// ScenarioSeconds is the emergency countdown length.
	ScenarioSeconds int `yaml:"scenario_seconds"`
}

// MaxStatus is the upper bound of the patient status.
const MaxStatus = 100

// DefaultRules returns the standard level rules.
func DefaultRules() Rules {
	return Rules{
		BaseAward:            100,
		Tolerance:            50,
		TargetSeconds:        300,
		TimeBonusRate:        10,
		EmergencyBonus:       500,
		EmergencyStartStatus: 80,
		DecayPerTick:         2,
		Replenish:            15,
		ScenarioSeconds:      180,
	}
}

// normalize fills zero or negative fields from the defaults.
func (r Rules) normalize() Rules {
	d := DefaultRules()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&r.BaseAward, d.BaseAward)
	fill(&r.Tolerance, d.Tolerance)
	fill(&r.TargetSeconds, d.TargetSeconds)
	fill(&r.TimeBonusRate, d.TimeBonusRate)
	fill(&r.EmergencyBonus, d.EmergencyBonus)
	fill(&r.EmergencyStartStatus, d.EmergencyStartStatus)
	fill(&r.DecayPerTick, d.DecayPerTick)
	fill(&r.Replenish, d.Replenish)
	fill(&r.ScenarioSeconds, d.ScenarioSeconds)
	r.EmergencyStartStatus = min(r.EmergencyStartStatus, MaxStatus)
	return r
}
