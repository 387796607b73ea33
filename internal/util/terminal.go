package util

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// GetTerminalWidth returns the width of the terminal, or 80 if not a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80 // Default width
	}
	return width
}

// UsageBar renders a fixed-width ASCII bar for a volume's used ratio,
// e.g. "[########..........]", for the show --volumes view.
func UsageBar(usedRatio float64, width int) string {
	if width <= 2 {
		width = 20
	}
	if usedRatio < 0 {
		usedRatio = 0
	}
	if usedRatio > 1 {
		usedRatio = 1
	}
	slots := width - 2
	filled := int(usedRatio*float64(slots) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", slots-filled) + "]"
}
