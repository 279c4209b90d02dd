package grid

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
)

// seqNames is a deterministic NameSource with an optional cap, for driving
// the exhaustion path.
type seqNames struct {
	next  int
	limit int // 0 means unlimited
}

func (s *seqNames) GenerateCommandName(role int) (string, bool) {
	if s.limit > 0 && s.next >= s.limit {
		return "", false
	}
	s.next++
	return fmt.Sprintf("cmd-%d-%d", role, s.next), true
}

func (s *seqNames) GenerateAction() string { return "wave" }

func TestGenerateFillsBoard(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := Generate(4, 4, 0, 3, &seqNames{}, rng)

		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				if g.Cells[y][x] == Empty {
					t.Fatalf("seed %d: cell (%d,%d) left empty", seed, y, x)
				}
			}
		}
	}
}

func TestGenerateWidgetsInBoundsAndDisjoint(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := Generate(4, 4, 1, 5, &seqNames{}, rng)

		covered := make(map[[2]int]string)
		for _, w := range g.Objects {
			if w.X < 0 || w.Y < 0 || w.X+w.W > g.Width || w.Y+w.H > g.Height {
				t.Fatalf("seed %d: widget %q out of bounds: x=%d y=%d w=%d h=%d",
					seed, w.Name, w.X, w.Y, w.W, w.H)
			}
			for dy := 0; dy < w.H; dy++ {
				for dx := 0; dx < w.W; dx++ {
					key := [2]int{w.Y + dy, w.X + dx}
					if prev, ok := covered[key]; ok {
						t.Fatalf("seed %d: widgets %q and %q overlap at (%d,%d)",
							seed, prev, w.Name, key[0], key[1])
					}
					covered[key] = w.Name
				}
			}
		}
	}
}

func TestGenerateLevelZeroSizes(t *testing.T) {
	// At level 0 every rectangle extent is exactly 2.
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := Generate(3, 3, 0, 0, &seqNames{}, rng)

		for _, w := range g.Objects {
			if w.W > 1 && w.W != 2 {
				t.Fatalf("seed %d: widget %q has width %d at level 0", seed, w.Name, w.W)
			}
			if w.H > 1 && w.H != 2 {
				t.Fatalf("seed %d: widget %q has height %d at level 0", seed, w.Name, w.H)
			}
		}
	}
}

func TestGenerateUniqueNames(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := Generate(4, 4, 2, 4, &seqNames{}, rng)

	seen := make(map[string]bool)
	for _, w := range g.Objects {
		if seen[w.Name] {
			t.Fatalf("duplicate widget name %q", w.Name)
		}
		seen[w.Name] = true
	}
	if len(g.Objects) == 0 {
		t.Fatal("no widgets generated")
	}
}

func TestGenerateStopsOnNameExhaustion(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g := Generate(4, 4, 0, 3, &seqNames{limit: 2}, rng)

	if len(g.Objects) != 2 {
		t.Fatalf("expected exactly 2 widgets from a capped name source, got %d", len(g.Objects))
	}
}

func TestPartialGridHasNoOrphanCells(t *testing.T) {
	// When the name source dries up mid-generation, every non-empty cell
	// must still belong to a placed widget.
	for seed := int64(0); seed < 30; seed++ {
		for _, limit := range []int{1, 2, 4} {
			rng := rand.New(rand.NewSource(seed))
			g := Generate(4, 4, 0, 3, &seqNames{limit: limit}, rng)

			covered := make(map[[2]int]bool)
			for _, w := range g.Objects {
				for dy := 0; dy < w.H; dy++ {
					for dx := 0; dx < w.W; dx++ {
						covered[[2]int{w.Y + dy, w.X + dx}] = true
					}
				}
			}
			for y := 0; y < g.Height; y++ {
				for x := 0; x < g.Width; x++ {
					if g.Cells[y][x] != Empty && !covered[[2]int{y, x}] {
						t.Fatalf("seed %d limit %d: cell (%d,%d) occupied but owned by no widget",
							seed, limit, y, x)
					}
				}
			}
		}
	}
}

func TestFind(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := Generate(3, 3, 0, 1, &seqNames{}, rng)

	if len(g.Objects) == 0 {
		t.Fatal("no widgets generated")
	}
	want := g.Objects[0]
	if got := g.Find(want.Name); got != want {
		t.Fatalf("Find(%q) = %v, want %v", want.Name, got, want)
	}
	if got := g.Find("no such widget"); got != nil {
		t.Fatalf("Find of unknown name = %v, want nil", got)
	}
}

func TestWidgetMarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		widget *Widget
		want   map[string]interface{}
		absent []string
	}{
		{
			name:   "button",
			widget: &Widget{Name: "Main Breaker", Type: TypeButton, X: 1, Y: 2, W: 1, H: 1},
			want:   map[string]interface{}{"type": "button", "name": "Main Breaker", "x": 1.0, "y": 2.0},
			absent: []string{"min", "max", "actions", "toggled"},
		},
		{
			name:   "slider",
			widget: &Widget{Name: "Steam Valve", Type: TypeSlider, W: 2, H: 1, Min: 0, Max: 4},
			want:   map[string]interface{}{"type": "slider", "min": 0.0, "max": 4.0},
			absent: []string{"actions", "toggled"},
		},
		{
			name:   "switch",
			widget: &Widget{Name: "Night Mode", Type: TypeSwitch, Toggled: true},
			want:   map[string]interface{}{"type": "switch", "toggled": true},
			absent: []string{"min", "actions"},
		},
		{
			name:   "extra overrides core",
			widget: &Widget{Name: "Odd One", Type: TypeButton, Extra: map[string]interface{}{"name": "Renamed"}},
			want:   map[string]interface{}{"type": "button", "name": "Renamed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.widget)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got map[string]interface{}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %q = %v, want %v", k, got[k], v)
				}
			}
			for _, k := range tt.absent {
				if _, ok := got[k]; ok {
					t.Errorf("key %q should be absent, got %v", k, got[k])
				}
			}
		})
	}
}
