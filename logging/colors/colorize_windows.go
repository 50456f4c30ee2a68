//go:build windows
// +build windows

package colors

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// enabled describes whether ANSI coloring is applied by Colorize
var enabled bool

// EnableColor turns ANSI coloring on if stdout is a console which supports, or can be switched to, virtual terminal
// processing. Output redirected away from a console stays uncolored.
func EnableColor() {
	handle := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		enabled = false
		return
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING == 0 {
		if err := windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
			enabled = false
			return
		}
	}
	enabled = true
}

// DisableColor turns ANSI coloring off, Colorize will return the plain string representation of its input.
func DisableColor() {
	enabled = false
}

// Colorize returns the string s wrapped in ANSI code c if coloring is enabled
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
