package format

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	barDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barTodoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barLabelStyle = lipgloss.NewStyle().Bold(true)
)

// Progress draws a single line progress bar that is redrawn in place.
// Updates that do not change the rendered percentage are dropped.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	color bool
	last  int
	drawn bool
}

// NewProgress creates a progress bar writing to w.
func NewProgress(w io.Writer, label string, color bool) *Progress {
	return &Progress{w: w, label: label, color: color, last: -1}
}

// Update draws fraction, clamped to [0, 1].
func (p *Progress) Update(fraction float64) {
	fraction = min(max(fraction, 0), 1)
	pct := int(fraction * 100)

	p.mu.Lock()
	defer p.mu.Unlock()
	if pct == p.last {
		return
	}
	p.last = pct
	p.drawn = true
	fmt.Fprintf(p.w, "\r%s", Bar(p.label, fraction, p.color))
}

// Bytes draws written out of total bytes.
func (p *Progress) Bytes(written, total int64) {
	if total <= 0 {
		return
	}
	p.Update(float64(written) / float64(total))
}

// Done terminates the line if anything was drawn.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

// Bar renders one progress line.
func Bar(label string, fraction float64, color bool) string {
	filled := int(fraction * barWidth)
	done := strings.Repeat("█", filled)
	todo := strings.Repeat("░", barWidth-filled)
	pct := fmt.Sprintf("%3d%%", int(fraction*100))
	if !color {
		return fmt.Sprintf("%s [%s%s] %s", label, done, todo, pct)
	}
	return fmt.Sprintf("%s %s%s %s", barLabelStyle.Render(label), barDoneStyle.Render(done), barTodoStyle.Render(todo), pct)
}
