// Package profiler - Per stage timing statistics for the pose pipeline.
package profiler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stage names recorded by the pipeline.
const (
	StageDecode    = "decode"
	StageLetterbox = "letterbox"
	StageInference = "inference"
	StageEstimate  = "estimate"
	StageRender    = "render"
)

// Stat summarizes the durations recorded for one stage.
type Stat struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Mean returns the average duration, or zero for an empty stat.
func (s Stat) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stat) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("count", s.Count)
	enc.AddDuration("mean", s.Mean())
	enc.AddDuration("min", s.Min)
	enc.AddDuration("max", s.Max)
	return nil
}

// Profiler records stage durations. It is safe for concurrent use.
type Profiler struct {
	mu     sync.Mutex
	stages map[string]*Stat
}

// New creates an empty profiler.
func New() *Profiler {
	return &Profiler{stages: make(map[string]*Stat)}
}

// StartOperation begins timing an operation.
//
// Arguments:
//   - name: The name of the stage to track.
//
// Returns:
//   - func(): Call when the operation completes.
//
// @example
//
//	done := p.StartOperation(profiler.StageInference)
//	heatmaps, pafs, err := session.Run(input)
//	done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one duration to the named stage.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stages[name]
	if !ok {
		s = &Stat{Name: name, Min: d, Max: d}
		p.stages[name] = s
	}
	s.Count++
	s.Total += d
	s.Min = min(s.Min, d)
	s.Max = max(s.Max, d)
}

// Stats returns a snapshot of every stage sorted by name.
func (p *Profiler) Stats() []Stat {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Stat, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Fields renders the snapshot as zap fields, one object per stage.
func (p *Profiler) Fields() []zap.Field {
	stats := p.Stats()
	fields := make([]zap.Field, len(stats))
	for i, s := range stats {
		fields[i] = zap.Object(s.Name, s)
	}
	return fields
}
