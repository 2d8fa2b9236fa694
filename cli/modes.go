package cli

import (
	"fmt"
	"io"
)

// runWizard is the placeholder for the interactive request builder.
func runWizard(w io.Writer) int {
	fmt.Fprintln(w, "Wizard mode not implemented yet.")
	return 0
}

// runInspect is the placeholder for response inspection.
func runInspect(w io.Writer) int {
	fmt.Fprintln(w, "Inspect mode not implemented yet.")
	return 0
}
