package engine

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/citypanic/citypanic/game/grid"
)

// SpecialCommand marks the asteroid/black-hole instructions that are
// discharged by unanimous defeat_special rather than by do_command.
type SpecialCommand int

const (
	SpecialNone SpecialCommand = iota
	SpecialAsteroid
	SpecialBlackHole
)

func (s SpecialCommand) String() string {
	switch s {
	case SpecialAsteroid:
		return "Asteroid"
	case SpecialBlackHole:
		return "Black Hole"
	}
	return "None"
}

// Instruction is an obligation bound to a source slot: the value that must be
// observed on the target widget, or a special command defeated collectively.
type Instruction struct {
	Source  *Slot
	Target  *Slot        // nil for special commands
	Command *grid.Widget // nil for special commands
	Special SpecialCommand

	// SpecialAction marks instructions issued for a game-modifier widget,
	// which every other slot must complete before the set clears.
	SpecialAction bool

	// Value is what do_command must deliver to complete this instruction:
	// nil for buttons and specials, int for slider-likes, bool for
	// switches, lower-cased string for actions.
	Value interface{}

	Text string
}

func newInstruction(source, target *Slot, command *grid.Widget, special SpecialCommand, specialAction bool, rng *rand.Rand) *Instruction {
	in := &Instruction{
		Source:        source,
		Target:        target,
		Command:       command,
		Special:       special,
		SpecialAction: specialAction,
	}

	switch special {
	case SpecialAsteroid:
		in.Text = "Asteroid incoming! All crews take cover!"
		return in
	case SpecialBlackHole:
		in.Text = "Black hole detected! All crews brace!"
		return in
	}

	switch {
	case command.Type == grid.TypeButton:
		in.Text = fmt.Sprintf("Press %s", command.Name)
	case command.Type == grid.TypeSwitch:
		want := !command.Toggled
		in.Value = want
		if want {
			in.Text = fmt.Sprintf("Turn on %s", command.Name)
		} else {
			in.Text = fmt.Sprintf("Turn off %s", command.Name)
		}
	case command.Type.IsSliderLike():
		span := command.Max - command.Min + 1
		v := command.Min + rng.Intn(span)
		if v == command.Value {
			v = command.Min + (v-command.Min+1)%span
		}
		in.Value = v
		in.Text = fmt.Sprintf("Set %s to %d", command.Name, v)
	case command.Type == grid.TypeActions:
		action := command.Actions[rng.Intn(len(command.Actions))]
		in.Value = strings.ToLower(action)
		in.Text = fmt.Sprintf("%s the %s", action, command.Name)
	}
	return in
}
