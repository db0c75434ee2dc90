package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Printer writes user-facing messages. Regular output goes to out, errors to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New creates a printer. Nil writers default to stdout and stderr.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut}
}

// Out returns the writer for regular output.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Success prints a success message in green with a checkmark prefix
func (p *Printer) Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Fprintf(p.out, "✓ %s", msg)
	} else {
		green.Fprint(p.out, msg)
	}
}

// Info prints an informational message in the default color
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Fprintf(p.errOut, "⚠️  %s", msg)
	} else {
		yellow.Fprint(p.errOut, msg)
	}
}

// Error creates a formatted error message with title, explanation, and suggestions.
// Prints the formatted error to the error writer and returns a *Reported
// wrapping err (which may be nil), so callers can still inspect it with errors.Is.
func (p *Printer) Error(err error, title string, explanation string, suggestions []string) error {
	red.Fprintf(p.errOut, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(p.errOut, "%s\n", explanation)
	}

	p.suggest(suggestions)

	return &Reported{Title: title, Err: err}
}

// ErrorWithContext is Error with key/value details printed under the explanation.
// Keys are printed in the order given.
func (p *Printer) ErrorWithContext(err error, title string, explanation string, context [][2]string, suggestions []string) error {
	red.Fprintf(p.errOut, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(p.errOut, "%s\n", explanation)
	}

	if len(context) > 0 {
		fmt.Fprintf(p.errOut, "\n")
		for _, kv := range context {
			fmt.Fprintf(p.errOut, "  %s: %s\n", kv[0], kv[1])
		}
	}

	p.suggest(suggestions)

	return &Reported{Title: title, Err: err}
}

func (p *Printer) suggest(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(p.errOut, "\n")
	if len(suggestions) == 1 {
		fmt.Fprintf(p.errOut, "%s\n", suggestions[0])
		return
	}
	fmt.Fprintf(p.errOut, "Either:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(p.errOut, "  %d. %s\n", i+1, suggestion)
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.out, "→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Reported marks an error that has already been shown to the user.
type Reported struct {
	Title string
	Err   error
}

func (r *Reported) Error() string {
	if r.Err == nil {
		return r.Title
	}
	return fmt.Sprintf("%s: %v", r.Title, r.Err)
}

func (r *Reported) Unwrap() error {
	return r.Err
}
