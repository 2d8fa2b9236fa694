package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/kbukum/hurl/domain"
)

// Printer writes responses to the terminal.
type Printer struct {
	w      io.Writer
	status *color.Color
	body   *color.Color
}

// NewPrinter returns a Printer for w. Color is used only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:      w,
		status: color.New(color.FgCyan),
		body:   color.New(color.FgGreen),
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) && os.Getenv("NO_COLOR") == "" {
		p.w = colorable.NewColorable(f)
		p.setColor(true)
	} else {
		p.setColor(false)
	}
	return p
}

func (p *Printer) setColor(on bool) {
	for _, c := range []*color.Color{p.status, p.body} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Status prints "Status: N".
func (p *Printer) Status(status int) {
	p.status.Fprintln(p.w, fmt.Sprintf("Status: %d", status))
}

// Body prints body pretty-printed when it is JSON, raw otherwise.
func (p *Printer) Body(body string) {
	if pretty, ok := prettyJSON(body); ok {
		p.body.Fprintln(p.w, pretty)
		return
	}
	fmt.Fprintln(p.w, body)
}

// Println prints a plain line.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.w, s)
}

// prettyJSON indents body with two spaces, keeping key order and number text.
func prettyJSON(body string) (string, bool) {
	if !json.Valid([]byte(body)) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

// SaveResponse writes the raw body to path with mode 0644.
func SaveResponse(path string, resp domain.Response) error {
	if err := os.WriteFile(path, []byte(resp.Body), 0o644); err != nil { //nolint:gosec // response files are user-readable
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// outputPath returns where the i-th of n responses is saved. A batch writes
// one file per URL, suffixed with its 1-based position.
func outputPath(path string, i, n int) string {
	if n == 1 {
		return path
	}
	return fmt.Sprintf("%s.%d", path, i+1)
}
