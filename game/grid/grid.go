package grid

import (
	"math/rand"
)

// CellType tags a cell of the occupancy matrix.
type CellType int

const (
	Empty CellType = iota
	Occupied
	Square
	VerticalRectangle
	HorizontalRectangle
	BigSquare
)

// NameSource supplies unique command names and action verbs for widget
// construction. GenerateCommandName returns ok=false when the pool for the
// role is exhausted, which terminates grid generation early.
type NameSource interface {
	GenerateCommandName(role int) (string, bool)
	GenerateAction() string
}

// Grid is one player's widget layout: a width×height occupancy matrix plus
// the ordered list of placed widgets. Cells[y][x] addressing.
type Grid struct {
	Width   int
	Height  int
	Cells   [][]CellType
	Objects []*Widget
}

// Generate builds a fully populated grid for the given role and level.
// Cells are scanned row-major; each still-empty cell anchors a randomly
// shaped widget sized to fit the free space around it. Generation stops
// early (returning a partial grid) if the name source runs dry.
func Generate(width, height, role, level int, names NameSource, rng *rand.Rand) *Grid {
	g := &Grid{Width: width, Height: height}
	g.Cells = make([][]CellType, height)
	for y := range g.Cells {
		g.Cells[y] = make([]CellType, width)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if g.Cells[y][x] != Empty {
				continue
			}
			if !g.placeRandom(y, x, role, level, names, rng) {
				// Name pool exhausted, stop placing widgets.
				return g
			}
		}
	}
	return g
}

// placeRandom anchors one widget at (y,x). Returns false when no name could
// be generated.
func (g *Grid) placeRandom(y, x, role, level int, names NameSource, rng *rand.Rand) bool {
	spacesRight := g.spacesRight(y, x)
	spacesDown := g.spacesDown(y, x)

	pool := []CellType{Square}
	if spacesRight > 0 {
		pool = append(pool, HorizontalRectangle)
	}
	if spacesDown > 0 {
		pool = append(pool, VerticalRectangle)
	}
	if spacesRight > 0 && spacesDown > 0 {
		pool = append(pool, BigSquare)
	}
	shape := pool[rng.Intn(len(pool))]

	size := 1
	switch shape {
	case HorizontalRectangle:
		size = drawSize(rng, level, g.Width-1-x, spacesRight+1)
	case VerticalRectangle:
		size = drawSize(rng, level, g.Height-1-y, spacesDown+1)
	case BigSquare:
		size = drawSize(rng, level, g.Width-1-x, min3(spacesRight+1, spacesDown+1, 3))
	}

	return g.insert(y, x, shape, size, role, names, rng)
}

// drawSize picks a rectangle extent. Level 0 always uses 2; later levels
// draw from [2, limit] and clamp to the contiguous free run so widgets never
// overlap or leave the board.
func drawSize(rng *rand.Rand, level, limit, free int) int {
	if level == 0 {
		return 2
	}
	if limit < 2 {
		limit = 2
	}
	size := 2 + rng.Intn(limit-1)
	if size > free {
		size = free
	}
	if size < 2 {
		size = 2
	}
	return size
}

// insert appends the widget and stamps its occupancy. The name is requested
// first so an exhausted name source leaves the touched cells EMPTY.
func (g *Grid) insert(y, x int, shape CellType, size, role int, names NameSource, rng *rand.Rand) bool {
	// Variant pool, weighted by repetition.
	var variants []WidgetType
	if shape == Square || shape == BigSquare {
		variants = append(variants, TypeButton, TypeSwitch)
	}
	if shape == VerticalRectangle && size == 2 {
		variants = append(variants, TypeActions, TypeActions)
	}
	if shape == VerticalRectangle || shape == HorizontalRectangle {
		variants = append(variants, TypeSlider)
	}
	if shape == BigSquare {
		variants = append(variants, TypeCircularSlider, TypeCircularSlider, TypeCircularSlider)
	}
	if shape == HorizontalRectangle {
		variants = append(variants, TypeButtonsSlider, TypeButtonsSlider)
	}
	variant := variants[rng.Intn(len(variants))]

	name, ok := names.GenerateCommandName(role)
	if !ok {
		return false
	}

	g.Cells[y][x] = shape
	switch shape {
	case VerticalRectangle:
		for i := y + 1; i < y+size; i++ {
			g.Cells[i][x] = Occupied
		}
	case HorizontalRectangle:
		for i := x + 1; i < x+size; i++ {
			g.Cells[y][i] = Occupied
		}
	case BigSquare:
		for dy := 0; dy < size; dy++ {
			for dx := 0; dx < size; dx++ {
				if dy == 0 && dx == 0 {
					continue
				}
				g.Cells[y+dy][x+dx] = BigSquare
			}
		}
	}

	w := &Widget{Name: name, Type: variant, X: x, Y: y, W: 1, H: 1}
	switch shape {
	case VerticalRectangle:
		w.H = size
	case HorizontalRectangle:
		w.W = size
	case BigSquare:
		w.W, w.H = size, size
	}

	switch variant {
	case TypeSlider, TypeButtonsSlider:
		w.Min, w.Max = 0, 3+rng.Intn(3)
	case TypeCircularSlider:
		w.Min, w.Max = 0, 4+rng.Intn(4)
	case TypeActions:
		n := 2 + rng.Intn(3)
		for i := 0; i < n; i++ {
			w.Actions = append(w.Actions, names.GenerateAction())
		}
	}

	g.Objects = append(g.Objects, w)
	return true
}

// Find returns the widget with the given name, or nil.
func (g *Grid) Find(name string) *Widget {
	for _, w := range g.Objects {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// spacesRight counts contiguous empty cells strictly right of (y,x).
func (g *Grid) spacesRight(y, x int) int {
	count := 0
	for i := x + 1; i < g.Width; i++ {
		if g.Cells[y][i] != Empty {
			return count
		}
		count++
	}
	return count
}

// spacesDown counts contiguous empty cells strictly below (y,x).
func (g *Grid) spacesDown(y, x int) int {
	count := 0
	for i := y + 1; i < g.Height; i++ {
		if g.Cells[i][x] != Empty {
			return count
		}
		count++
	}
	return count
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
