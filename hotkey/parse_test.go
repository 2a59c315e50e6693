package hotkey

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		accel   string
		want    Binding
		wantErr error
	}{
		{"Ctrl+Shift+Alt+Y", Binding{ModControl | ModShift | ModAlt, 'Y'}, nil},
		{"ctrl+shift+alt+t", Binding{ModControl | ModShift | ModAlt, 'T'}, nil},
		{"Control + Alt + 1", Binding{ModControl | ModAlt, '1'}, nil},
		{"Alt+D4", Binding{ModAlt, '4'}, nil},
		{"Win+Space", Binding{ModWin, 0x20}, nil},
		{"Windows+F12", Binding{ModWin, 0x7B}, nil},
		{"Shift+F1", Binding{ModShift, 0x70}, nil},
		{"Ctrl+F24", Binding{ModControl, 0x87}, nil},
		{"Ctrl+Home", Binding{ModControl, 0x24}, nil},
		{"Ctrl+Delete", Binding{ModControl, 0x2E}, nil},
		{"Ctrl+PageDown", Binding{ModControl, 0x22}, nil},
		{"Ctrl+,", Binding{ModControl, 0xBC}, nil},
		{"Ctrl++", Binding{ModControl, 0xBB}, nil},
		{"", Binding{}, ErrEmpty},
		{"   ", Binding{}, ErrEmpty},
		{"Y", Binding{}, ErrNoModifier},
		{"Hyper+Y", Binding{}, ErrUnknownModifier},
		{"Ctrl+Meta+Y", Binding{}, ErrUnknownModifier},
		{"Ctrl+", Binding{}, ErrUnknownKey},
		{"Ctrl+F25", Binding{}, ErrUnknownKey},
		{"Ctrl+Banana", Binding{}, ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.accel, func(t *testing.T) {
			got, err := Parse(tt.accel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.accel, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.accel, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.accel, got, tt.want)
			}
		})
	}
}

func TestBindingStringRoundTrip(t *testing.T) {
	for _, accel := range []string{"Ctrl+Shift+Alt+Y", "Alt+1", "Win+F5", "Ctrl+Shift+PageUp", "Ctrl+Alt+Space"} {
		b, err := Parse(accel)
		if err != nil {
			t.Fatalf("Parse(%q): %v", accel, err)
		}
		if got := b.String(); got != accel {
			t.Errorf("String() = %q, want %q", got, accel)
		}
		again, err := Parse(b.String())
		if err != nil || again != b {
			t.Errorf("reparse of %q = %+v, %v", b.String(), again, err)
		}
	}
}

func TestResolveFallback(t *testing.T) {
	tests := []struct {
		action Action
		accel  string
		want   Binding
	}{
		{ActionCommonQuestion, "garbage", Binding{ModAlt, '1'}},
		{ActionCorrection, "", Binding{ModAlt, '2'}},
		{ActionTranslation, "Q", Binding{ModAlt, '3'}},
		{ActionVariableNames, "Ctrl+Nope", Binding{ModAlt, '4'}},
		{ActionCorrection, "Ctrl+Shift+Alt+Y", Binding{ModControl | ModShift | ModAlt, 'Y'}},
	}
	for _, tt := range tests {
		if got := Resolve(tt.action, tt.accel); got != tt.want {
			t.Errorf("Resolve(%v, %q) = %+v, want %+v", tt.action, tt.accel, got, tt.want)
		}
	}
}

func TestResolveAllOrdersByAction(t *testing.T) {
	regs := resolveAll(map[Action]string{
		ActionVariableNames:  "Alt+4",
		ActionCommonQuestion: "Alt+1",
		ActionTranslation:    "bad",
	})
	if len(regs) != 3 {
		t.Fatalf("got %d registrations, want 3", len(regs))
	}
	want := []Action{ActionCommonQuestion, ActionTranslation, ActionVariableNames}
	for i, r := range regs {
		if r.action != want[i] {
			t.Errorf("regs[%d].action = %v, want %v", i, r.action, want[i])
		}
	}
	if regs[1].binding != ActionTranslation.Fallback() {
		t.Errorf("invalid accel did not fall back: %+v", regs[1].binding)
	}
}

func TestRegisterErrorMessage(t *testing.T) {
	err := &RegisterError{Failed: map[Action]error{
		ActionTranslation: errors.New("taken"),
		ActionCorrection:  errors.New("taken"),
	}}
	want := "register hotkeys: correction (taken); translation (taken)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
