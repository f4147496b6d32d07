// Package metrics records per-stage compile timing, trimmed from the
// original implementation's compilation_profiler (see DESIGN.md) to
// drop anything JIT-specific, which is out of scope here.
package metrics

import (
	"fmt"
	"strings"
	"time"
)

type StageTimer struct {
	order   []string
	start   map[string]time.Time
	elapsed map[string]time.Duration
}

func NewStageTimer() *StageTimer {
	return &StageTimer{start: map[string]time.Time{}, elapsed: map[string]time.Duration{}}
}

func (s *StageTimer) Start(stage string) {
	if _, seen := s.elapsed[stage]; !seen {
		s.order = append(s.order, stage)
	}
	s.start[stage] = time.Now()
}

func (s *StageTimer) Stop(stage string) {
	s.elapsed[stage] = time.Since(s.start[stage])
}

func (s *StageTimer) Summary() string {
	var sb strings.Builder
	total := time.Duration(0)
	for _, stage := range s.order {
		d := s.elapsed[stage]
		total += d
		fmt.Fprintf(&sb, "%-10s %v\n", stage, d)
	}
	fmt.Fprintf(&sb, "%-10s %v", "total", total)
	return sb.String()
}
