// Package names generates the human-readable command names players shout at
// each other. Names combine a qualifier with a role-themed noun; each
// generator hands out every combination at most once so widget names stay
// unique for the lifetime of a level's grids.
package names

import (
	"fmt"
	"math/rand"
	"sync"
)

// Role-themed noun pools. Role 0 is power & engineering, 1 is transit,
// 2 is sanitation & utilities, 3 is communications.
var roleNouns = [][]string{
	{
		"Reactor", "Dynamo", "Fusebox", "Turbine", "Capacitor", "Manifold",
		"Piston", "Boiler", "Generator", "Flywheel", "Condenser", "Breaker",
	},
	{
		"Subway", "Crosswalk", "Tollbooth", "Ferry", "Gridlock", "Drawbridge",
		"Taxi", "Turnstile", "Streetcar", "Overpass", "Bus Lane", "Signal",
	},
	{
		"Hydrant", "Dumpster", "Aqueduct", "Compactor", "Sewer", "Scrubber",
		"Incinerator", "Recycler", "Sprinkler", "Gutter", "Valve", "Pump",
	},
	{
		"Antenna", "Megaphone", "Billboard", "Switchboard", "Teleprompter",
		"Hotline", "Satellite", "Transmitter", "Pager", "Jumbotron", "Modem",
		"Intercom",
	},
}

var qualifiers = []string{
	"Auxiliary", "Emergency", "Municipal", "Uptown", "Downtown", "Express",
	"Rusty", "Chrome", "Backup", "Central", "Elevated", "Underground",
	"Historic", "Deluxe", "Borough", "Midnight",
}

var actionVerbs = []string{
	"Honk", "Wave", "Shout", "Salute", "Stamp", "Shuffle", "Whistle",
	"Applaud", "Jaywalk", "Haggle", "Loiter",
}

// Generator implements the grid.NameSource contract. It is safe for
// concurrent use, though in practice each level's generation runs from a
// single match context.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	used map[string]bool
}

// NewGenerator returns a fresh generator with an empty used-name set.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, used: make(map[string]bool)}
}

// GenerateCommandName returns a unique name for the role, or ok=false when
// every qualifier×noun combination for that role has been handed out.
func (g *Generator) GenerateCommandName(role int) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if role < 0 || role >= len(roleNouns) {
		role = len(roleNouns) - 1
	}
	nouns := roleNouns[role]

	// A handful of random draws almost always succeeds; fall back to a
	// linear scan so exhaustion is detected deterministically.
	for attempt := 0; attempt < 10; attempt++ {
		name := fmt.Sprintf("%s %s", qualifiers[g.rng.Intn(len(qualifiers))], nouns[g.rng.Intn(len(nouns))])
		if !g.used[name] {
			g.used[name] = true
			return name, true
		}
	}
	for _, q := range qualifiers {
		for _, n := range nouns {
			name := q + " " + n
			if !g.used[name] {
				g.used[name] = true
				return name, true
			}
		}
	}
	return "", false
}

// GenerateAction returns an action verb. Actions may repeat across widgets.
func (g *Generator) GenerateAction() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return actionVerbs[g.rng.Intn(len(actionVerbs))]
}
