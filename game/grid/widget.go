package grid

import (
	"encoding/json"
	"strings"
)

// WidgetType identifies the interactive element variant placed on a grid.
type WidgetType string

const (
	TypeButton         WidgetType = "button"
	TypeSlider         WidgetType = "slider"
	TypeCircularSlider WidgetType = "circular_slider"
	TypeActions        WidgetType = "actions"
	TypeButtonsSlider  WidgetType = "buttons_slider"
	TypeSwitch         WidgetType = "switch"
)

// IsSliderLike reports whether the type carries an integer value in [Min, Max].
func (t WidgetType) IsSliderLike() bool {
	return t == TypeSlider || t == TypeCircularSlider || t == TypeButtonsSlider
}

// Widget is a single interactive element on a player's grid. Which fields are
// meaningful depends on Type: slider-likes use Min/Max/Value, actions use
// Actions, switches use Toggled. Name is unique across a match.
type Widget struct {
	Name string
	Type WidgetType

	X, Y int
	W, H int

	Min, Max int
	Value    int

	Actions []string

	Toggled bool

	// Extra carries arbitrary key-value pairs serialized alongside the
	// widget. Keys here override core keys on output.
	Extra map[string]interface{}
}

// NewActions builds an actions widget at the given footprint.
func NewActions(name string, x, y, w, h int, actions []string) *Widget {
	return &Widget{Name: name, Type: TypeActions, X: x, Y: y, W: w, H: h, Actions: actions}
}

// HasAction reports whether the lower-cased action is one of the widget's actions.
func (w *Widget) HasAction(action string) bool {
	for _, a := range w.Actions {
		if strings.ToLower(a) == action {
			return true
		}
	}
	return false
}

// MarshalJSON serializes the widget in the client wire format: core keys,
// type-specific keys, then Extra merged on top (Extra wins), with "type"
// always authoritative.
func (w *Widget) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"x":    w.X,
		"y":    w.Y,
		"w":    w.W,
		"h":    w.H,
		"name": w.Name,
	}
	switch {
	case w.Type.IsSliderLike():
		out["min"] = w.Min
		out["max"] = w.Max
	case w.Type == TypeActions:
		out["actions"] = w.Actions
	case w.Type == TypeSwitch:
		out["toggled"] = w.Toggled
	}
	for k, v := range w.Extra {
		out[k] = v
	}
	out["type"] = string(w.Type)
	return json.Marshal(out)
}
