package frame

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler times the steps of each frame and keeps per-frame counters. Last holds
// the most recent frame; totals over all frames give the averages.
type Profiler struct {
	Order  []string
	Last   map[string]time.Duration
	Counts map[string]int
	Frames int

	total  map[string]time.Duration
	starts map[string]time.Time
	now    func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Last:   make(map[string]time.Duration),
		Counts: make(map[string]int),
		total:  make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Reset starts a new frame.
func (p *Profiler) Reset() {
	p.Frames++
	clear(p.Last)
	clear(p.Counts)
	clear(p.starts)
}

func (p *Profiler) BeginScope(name string) {
	if _, seen := p.total[name]; !seen {
		p.Order = append(p.Order, name)
		p.total[name] = 0
	}
	p.starts[name] = p.now()
}

// EndScope is a no-op for a scope that was not begun this frame, so early
// returns can end scopes unconditionally.
func (p *Profiler) EndScope(name string) {
	start, ok := p.starts[name]
	if !ok {
		return
	}
	d := p.now().Sub(start)
	p.Last[name] = d
	p.total[name] += d
	delete(p.starts, name)
}

func (p *Profiler) SetCount(name string, count int) { p.Counts[name] = count }

// Average is the mean duration of a scope over every frame so far.
func (p *Profiler) Average(name string) time.Duration {
	if p.Frames == 0 {
		return 0
	}
	return p.total[name] / time.Duration(p.Frames)
}

// String renders one line: "ensure 0.01ms (avg 0.02ms) ... | draws=3 ranges=1".
func (p *Profiler) String() string {
	parts := make([]string, 0, len(p.Order))
	for _, name := range p.Order {
		parts = append(parts, fmt.Sprintf("%s %s (avg %s)", name, ms(p.Last[name]), ms(p.Average(name))))
	}
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	counts := make([]string, 0, len(keys))
	for _, k := range keys {
		counts = append(counts, fmt.Sprintf("%s=%d", k, p.Counts[k]))
	}
	if len(counts) == 0 {
		return strings.Join(parts, ", ")
	}
	return strings.Join(parts, ", ") + " | " + strings.Join(counts, " ")
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}
