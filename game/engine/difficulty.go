package engine

// Difficulty holds the per-level gameplay parameters. The zero value is not
// usable; start from DefaultDifficulty and let Advance derive later levels.
type Difficulty struct {
	InstructionsTime                   float64 `yaml:"instructions_time" json:"instructions_time"`
	HealthDrainRate                    float64 `yaml:"health_drain_rate" json:"health_drain_rate"`
	DeathLimitIncreaseRate             float64 `yaml:"death_limit_increase_rate" json:"death_limit_increase_rate"`
	CompletedInstructionHealthIncrease float64 `yaml:"completed_instruction_health_increase" json:"completed_instruction_health_increase"`
	ExpiredCommandHealthDecrease       float64 `yaml:"expired_command_health_decrease" json:"expired_command_health_decrease"`
	AsteroidChance                     float64 `yaml:"asteroid_chance" json:"asteroid_chance"`
	BlackHoleChance                    float64 `yaml:"black_hole_chance" json:"black_hole_chance"`
	SpecialCommandCooldown             int     `yaml:"special_command_cooldown" json:"special_command_cooldown"`
	GameModifierChance                 float64 `yaml:"game_modifier_chance" json:"game_modifier_chance"`
}

// DefaultDifficulty returns the level-0 baseline.
func DefaultDifficulty() Difficulty {
	return Difficulty{
		InstructionsTime:                   25,
		HealthDrainRate:                    0.5,
		DeathLimitIncreaseRate:             0.05,
		CompletedInstructionHealthIncrease: 10,
		ExpiredCommandHealthDecrease:       5,
		AsteroidChance:                     0,
		BlackHoleChance:                    0,
		SpecialCommandCooldown:             3,
		GameModifierChance:                 0.1,
	}
}

// Advance applies one level step of the difficulty recurrence. The caller is
// expected to rebase from the vanilla baseline first, so calling Advance n
// times from the baseline yields the parameters for level n.
func (d *Difficulty) Advance() {
	d.InstructionsTime = maxFloat(7.0, d.InstructionsTime-1.25)
	d.HealthDrainRate = minFloat(1.25, d.HealthDrainRate+0.35)
	d.DeathLimitIncreaseRate = minFloat(1.25, d.DeathLimitIncreaseRate+0.15)
	d.CompletedInstructionHealthIncrease = maxFloat(3.0, d.CompletedInstructionHealthIncrease-0.5)
	d.ExpiredCommandHealthDecrease = minFloat(11.5, d.ExpiredCommandHealthDecrease+0.25)
	d.AsteroidChance = 0
	d.BlackHoleChance = 0
	d.GameModifierChance = minFloat(1.0, d.GameModifierChance+0.25)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
