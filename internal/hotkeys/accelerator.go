package hotkeys

import (
	"fmt"
	"strings"
	"unicode"
)

var acceleratorMods = map[string]string{
	"ctrl":    "Control",
	"control": "Control",
	"shift":   "Shift",
	"alt":     "Mod1",
	"super":   "Mod4",
	"meta":    "Mod4",
	"win":     "Mod4",
}

var acceleratorKeys = map[string]string{
	"`":      "grave",
	"-":      "minus",
	"=":      "equal",
	"[":      "bracketleft",
	"]":      "bracketright",
	";":      "semicolon",
	"'":      "apostrophe",
	",":      "comma",
	".":      "period",
	"/":      "slash",
	"\\":     "backslash",
	"+":      "plus",
	"space":  "space",
	"tab":    "Tab",
	"enter":  "Return",
	"return": "Return",
	"esc":    "Escape",
	"escape": "Escape",
}

// GrabSequence converts a settings accelerator such as "Ctrl+`" or
// "Ctrl+Shift+T" into keybind notation ("Control-grave",
// "Control-Shift-t").
func GrabSequence(accel string) (string, error) {
	accel = strings.TrimSpace(accel)
	if accel == "" {
		return "", fmt.Errorf("empty hotkey")
	}

	var parts []string
	if strings.HasSuffix(accel, "++") {
		parts = append(strings.Split(strings.TrimSuffix(accel, "++"), "+"), "+")
	} else {
		parts = strings.Split(accel, "+")
	}

	out := make([]string, 0, len(parts))
	for _, mod := range parts[:len(parts)-1] {
		name, ok := acceleratorMods[strings.ToLower(strings.TrimSpace(mod))]
		if !ok {
			return "", fmt.Errorf("hotkey %q: unknown modifier %q", accel, mod)
		}
		out = append(out, name)
	}

	key, err := acceleratorKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return "", fmt.Errorf("hotkey %q: %w", accel, err)
	}
	return strings.Join(append(out, key), "-"), nil
}

func acceleratorKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("missing key")
	}
	lower := strings.ToLower(key)
	if _, ok := acceleratorMods[lower]; ok {
		return "", fmt.Errorf("%q is a modifier, not a key", key)
	}
	if name, ok := acceleratorKeys[lower]; ok {
		return name, nil
	}
	if len([]rune(key)) == 1 {
		r := []rune(key)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToLower(r)), nil
		}
		return "", fmt.Errorf("unsupported key %q", key)
	}
	if lower[0] == 'f' && len(lower) <= 3 && strings.Trim(lower[1:], "0123456789") == "" {
		return "F" + lower[1:], nil
	}
	// Anything else is taken as a keysym name, e.g. "grave" or "Print".
	return key, nil
}
