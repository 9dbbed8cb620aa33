// Package railfmt implements the presentation rules of spec.md §4.6/§6:
// how print/println join their arguments, and how values render as text.
// Full program pretty-printing remains a Non-goal (spec.md §1); this is
// only the value-to-text and argument-join behavior `print`/`println`
// need.
package railfmt

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/raillang/railway/internal/value"
)

// Join concatenates rendered values with a single space between tuple
// elements (spec.md §4.6).
func Join(parts []string) string {
	return strings.Join(parts, " ")
}

// Render is value.Value.String(); kept as a named entry point so callers
// don't need to import internal/value just to print.
func Render(v value.Value) string {
	return v.String()
}

// Sink is a mutex-guarded writer shared by every thread's print/println
// statements, so concurrent prints from a parallel call don't interleave
// mid-line.
type Sink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewSink wraps w for buffered, serialized output.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// Write emits the space-joined parts, with a trailing newline if nl is set.
func (s *Sink) Write(parts []string, nl bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.WriteString(Join(parts))
	if nl {
		s.w.WriteByte('\n')
	}
	s.w.Flush()
}
