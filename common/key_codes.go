package common

import (
	"fmt"
	"strings"
)

// Virtual key codes for viewer input.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	Key0 = 48 // 0 key (ASCII)
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)
)

// MouseButton identifies a pointer button. Values match GLFW mouse button codes.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// KeyName returns the printable name of a key code, as used in menu bindings.
func KeyName(code uint32) string {
	switch {
	case code >= Key0 && code <= Key9, code >= 'A' && code <= 'Z':
		return string(rune(code))
	case code == KeySpace:
		return "Space"
	case code == KeyEsc:
		return "Esc"
	default:
		return fmt.Sprintf("key(%d)", code)
	}
}

// ParseKey converts a single printable character or a named key ("Space", "Esc")
// into its key code. Letters are case-insensitive.
//
// Parameters:
//   - name: the key name
//
// Returns:
//   - uint32: the key code
//   - error: error if the key is not recognised
func ParseKey(name string) (uint32, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space":
		return KeySpace, nil
	case "esc", "escape":
		return KeyEsc, nil
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	if len(upper) == 1 {
		c := upper[0]
		if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') {
			return uint32(c), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
