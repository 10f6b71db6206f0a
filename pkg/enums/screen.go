package enums

import "fmt"

// Screen identifies one of the three logical screens of the purchase flow.
type Screen string

const (
	ScreenSelecting Screen = "selecting"
	ScreenPaying    Screen = "paying"
	ScreenManaging  Screen = "managing"
)

var validScreens = []Screen{
	ScreenSelecting,
	ScreenPaying,
	ScreenManaging,
}

// String implements fmt.Stringer.
func (s Screen) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Screen.
func (s Screen) IsValid() bool {
	for _, candidate := range validScreens {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScreen converts raw input into a Screen.
func ParseScreen(value string) (Screen, error) {
	for _, candidate := range validScreens {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid screen %q", value)
}
