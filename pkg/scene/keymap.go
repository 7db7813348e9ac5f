package scene

import "slices"

// Command is a user action the scene understands.
type Command int

const (
	None Command = iota
	SpinLeft
	SpinRight
	PitchUp
	PitchDown
	ZoomIn
	ZoomOut
	Nudge
	Reset
	ToggleShading
	ToggleDepth
	ToggleHUD
	Quit
)

var commandNames = map[Command]string{
	None:          "none",
	SpinLeft:      "spin left",
	SpinRight:     "spin right",
	PitchUp:       "pitch up",
	PitchDown:     "pitch down",
	ZoomIn:        "zoom in",
	ZoomOut:       "zoom out",
	Nudge:         "nudge",
	Reset:         "reset",
	ToggleShading: "toggle shading",
	ToggleDepth:   "toggle depth test",
	ToggleHUD:     "toggle help",
	Quit:          "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Binding ties key names to a command.
type Binding struct {
	Keys    []string
	Command Command
}

// KeyMap is an ordered list of bindings; the first match wins.
type KeyMap []Binding

// DefaultKeyMap is the viewer's key layout.
var DefaultKeyMap = KeyMap{
	{Keys: []string{"a", "left"}, Command: SpinLeft},
	{Keys: []string{"d", "right"}, Command: SpinRight},
	{Keys: []string{"w", "up"}, Command: PitchUp},
	{Keys: []string{"s", "down"}, Command: PitchDown},
	{Keys: []string{"+", "="}, Command: ZoomIn},
	{Keys: []string{"-", "_"}, Command: ZoomOut},
	{Keys: []string{"space"}, Command: Nudge},
	{Keys: []string{"r"}, Command: Reset},
	{Keys: []string{"f"}, Command: ToggleShading},
	{Keys: []string{"z"}, Command: ToggleDepth},
	{Keys: []string{"?"}, Command: ToggleHUD},
	{Keys: []string{"q", "esc", "ctrl+c"}, Command: Quit},
}

// Match returns the command of the first binding whose keys satisfy match,
// typically a key event's MatchString method.
func (m KeyMap) Match(match func(keys ...string) bool) Command {
	for _, b := range m {
		if match(b.Keys...) {
			return b.Command
		}
	}
	return None
}

// Lookup returns the command bound to a single key name.
func (m KeyMap) Lookup(key string) Command {
	return m.Match(func(keys ...string) bool {
		return slices.Contains(keys, key)
	})
}
