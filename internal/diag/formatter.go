package diag

import (
	"fmt"
	"os"
	"strings"
)

// Formatter renders Diagnostics in a Rust-style format with source
// snippets, caching loaded files by name.
type Formatter struct {
	sourceCache map[string]string
}

// NewFormatter creates an empty Formatter.
func NewFormatter() *Formatter {
	return &Formatter{sourceCache: make(map[string]string)}
}

// LoadSource loads and caches the source text for filename.
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format writes d to stderr.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)
	if d.Span.IsValid() && d.Span.Filename != "" {
		if src, err := f.LoadSource(d.Span.Filename); err == nil && src != "" {
			f.printSnippet(d, src)
		} else {
			fmt.Fprintf(os.Stderr, "  --> %s:%d:%d\n", d.Span.Filename, d.Span.Line, d.Span.Column)
		}
	}
	for _, n := range d.Notes {
		fmt.Fprintf(os.Stderr, "  = note: %s\n", n)
	}
	if d.Help != "" {
		fmt.Fprintf(os.Stderr, "help: %s\n", d.Help)
	}
}

func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}
	if d.Code != "" {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", severity, d.Message)
	}
}

func (f *Formatter) printSnippet(d Diagnostic, src string) {
	lines := strings.Split(src, "\n")
	if d.Span.Line < 1 || d.Span.Line > len(lines) {
		fmt.Fprintf(os.Stderr, "  --> %s:%d:%d\n", d.Span.Filename, d.Span.Line, d.Span.Column)
		return
	}
	lineContent := lines[d.Span.Line-1]
	width := len(fmt.Sprintf("%d", d.Span.Line))
	fmt.Fprintf(os.Stderr, "  --> %s:%d:%d\n", d.Span.Filename, d.Span.Line, d.Span.Column)
	fmt.Fprintf(os.Stderr, "   %s |\n", strings.Repeat(" ", width))
	fmt.Fprintf(os.Stderr, " %*d | %s\n", width, d.Span.Line, lineContent)

	underline := make([]byte, len(lineContent))
	for i := range underline {
		underline[i] = ' '
	}
	start := d.Span.Column - 1
	end := start + max(1, d.Span.End-d.Span.Start)
	for i := start; i >= 0 && i < end && i < len(underline); i++ {
		underline[i] = '^'
	}
	fmt.Fprintf(os.Stderr, "   %s | %s\n", strings.Repeat(" ", width), string(underline))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
