package cmdutils

import (
	"fmt"
	"io"
)

// Logo is printed in front of assistant replies on the terminal.
const Logo = "💼"

// WriteResponse prints an assistant reply to w under the logo header.
func WriteResponse(w io.Writer, text string) {
	if text == "" {
		return
	}

	fmt.Fprintf(w, "\n%s jobpilot\n%s\n\n", Logo, text)
}
