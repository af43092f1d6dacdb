package palette

import (
	"fmt"
	"os/exec"
)

// DetectBackend returns the first palette program found in PATH, rofi
// before dmenu.
func DetectBackend() (string, error) {
	for _, name := range []string{"rofi", "dmenu"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: rofi, dmenu)")
}
