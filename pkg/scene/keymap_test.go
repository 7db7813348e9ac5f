package scene

import "testing"

func TestKeyMapLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Command
	}{
		{"a", SpinLeft},
		{"left", SpinLeft},
		{"right", SpinRight},
		{"w", PitchUp},
		{"=", ZoomIn},
		{"-", ZoomOut},
		{"space", Nudge},
		{"f", ToggleShading},
		{"z", ToggleDepth},
		{"?", ToggleHUD},
		{"esc", Quit},
		{"ctrl+c", Quit},
		{"x", None},
	}
	for _, tt := range tests {
		if got := DefaultKeyMap.Lookup(tt.key); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestKeyMapMatchFirstWins(t *testing.T) {
	km := KeyMap{
		{Keys: []string{"x"}, Command: Reset},
		{Keys: []string{"x"}, Command: Quit},
	}
	got := km.Match(func(keys ...string) bool { return keys[0] == "x" })
	if got != Reset {
		t.Errorf("Match = %v, want %v", got, Reset)
	}
}

func TestCommandString(t *testing.T) {
	if got := ToggleDepth.String(); got != "toggle depth test" {
		t.Errorf("String() = %q", got)
	}
	if got := Command(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
