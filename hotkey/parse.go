package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier flags as accepted by RegisterHotKey.
const (
	ModAlt     uint32 = 0x0001
	ModControl uint32 = 0x0002
	ModShift   uint32 = 0x0004
	ModWin     uint32 = 0x0008
)

var (
	ErrEmpty           = errors.New("empty hotkey")
	ErrNoModifier      = errors.New("hotkey needs at least one modifier")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrUnknownKey      = errors.New("unknown key")
)

// Binding is a parsed accelerator: a modifier bitmask plus a virtual-key code.
type Binding struct {
	Modifiers uint32
	Key       uint32
}

var modifierNames = map[string]uint32{
	"ctrl":    ModControl,
	"control": ModControl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"win":     ModWin,
	"windows": ModWin,
}

// Windows virtual-key codes for named keys. Letters and digits are handled
// separately.
var namedKeys = map[string]uint32{
	"space":     0x20,
	"enter":     0x0D,
	"return":    0x0D,
	"tab":       0x09,
	"esc":       0x1B,
	"escape":    0x1B,
	"backspace": 0x08,
	"back":      0x08,
	"delete":    0x2E,
	"del":       0x2E,
	"insert":    0x2D,
	"ins":       0x2D,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"prior":     0x21,
	"pagedown":  0x22,
	"next":      0x22,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"pause":     0x13,
	"oemcomma":  0xBC,
	",":         0xBC,
	"oemperiod": 0xBE,
	".":         0xBE,
	"oemminus":  0xBD,
	"-":         0xBD,
	"oemplus":   0xBB,
	"=":         0xBB,
	";":         0xBA,
	"/":         0xBF,
	"`":         0xC0,
	"[":         0xDB,
	"\\":        0xDC,
	"]":         0xDD,
	"'":         0xDE,
}

// keyNames maps codes back to the canonical spelling used by String.
var keyNames = map[uint32]string{
	0x20: "Space", 0x0D: "Enter", 0x09: "Tab", 0x1B: "Esc", 0x08: "Backspace",
	0x2E: "Delete", 0x2D: "Insert", 0x24: "Home", 0x23: "End", 0x21: "PageUp",
	0x22: "PageDown", 0x25: "Left", 0x26: "Up", 0x27: "Right", 0x28: "Down",
	0x13: "Pause", 0xBC: ",", 0xBE: ".", 0xBD: "-", 0xBB: "=", 0xBA: ";",
	0xBF: "/", 0xC0: "`", 0xDB: "[", 0xDC: "\\", 0xDD: "]", 0xDE: "'",
}

// Parse converts an accelerator such as "Ctrl+Shift+Alt+Y" into a Binding.
// The last token is the key; every preceding token must be a modifier.
func Parse(accel string) (Binding, error) {
	accel = strings.TrimSpace(accel)
	if accel == "" {
		return Binding{}, ErrEmpty
	}

	parts := strings.Split(accel, "+")
	// "Ctrl++" names the plus key.
	if strings.HasSuffix(accel, "++") {
		parts = append(parts[:len(parts)-2], "=")
	}

	var b Binding
	for _, p := range parts[:len(parts)-1] {
		name := strings.ToLower(strings.TrimSpace(p))
		mod, ok := modifierNames[name]
		if !ok {
			return Binding{}, fmt.Errorf("%w: %q", ErrUnknownModifier, strings.TrimSpace(p))
		}
		b.Modifiers |= mod
	}
	if b.Modifiers == 0 {
		return Binding{}, ErrNoModifier
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	vk, ok := keyCode(key)
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	b.Key = vk
	return b, nil
}

// MustParse is like Parse but panics on error. Used for built-in defaults.
func MustParse(accel string) Binding {
	b, err := Parse(accel)
	if err != nil {
		panic(fmt.Sprintf("hotkey: parse %q: %v", accel, err))
	}
	return b
}

func keyCode(key string) (uint32, bool) {
	if key == "" {
		return 0, false
	}
	k := strings.ToLower(key)

	if len(k) == 1 {
		c := k[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint32(c - 'a' + 'A'), true
		case c >= '0' && c <= '9':
			return uint32(c), true
		}
	}

	// D0..D9 as in .NET Keys names.
	if len(k) == 2 && k[0] == 'd' && k[1] >= '0' && k[1] <= '9' {
		return uint32(k[1]), true
	}

	if k[0] == 'f' && len(k) <= 3 {
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprint(n) == k[1:] {
			return 0x70 + uint32(n-1), true
		}
	}

	vk, ok := namedKeys[k]
	return vk, ok
}

// String renders the binding in canonical "Ctrl+Shift+Alt+Win+Key" order.
func (b Binding) String() string {
	var parts []string
	if b.Modifiers&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if b.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if b.Modifiers&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if b.Modifiers&ModWin != 0 {
		parts = append(parts, "Win")
	}
	return strings.Join(append(parts, KeyName(b.Key)), "+")
}

// KeyName returns the display name of a virtual-key code.
func KeyName(vk uint32) string {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("F%d", vk-0x70+1)
	}
	if name, ok := keyNames[vk]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", vk)
}
