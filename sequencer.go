// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"io"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/snemo/trigsim/internal/bits"
	"github.com/snemo/trigsim/lut"
)

// State is the state of a Sequencer.
//
type State int

// Sequencer states.
//
const (
	Idle State = iota
	Initialized
	Running
	Done
)

var stateNames = [...]string{"idle", "initialized", "running", "done"}

func (s State) String() string {
	if s < Idle || s > Done {
		return "invalid"
	}
	return stateNames[s]
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// An Option configures a Sequencer.
//
type Option func(*Sequencer)

// Workers sets the number of goroutines processing ticks. If less or equal to
// 0, the value of GOMAXPROCS is used.
//
func Workers(n int) Option {
	return func(s *Sequencer) { s.workers = n }
}

// Logger sets the logger of the sequencer.
//
func Logger(l logrus.FieldLogger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithGeometry overrides the Reference geometry.
//
func WithGeometry(g Geometry) Option {
	return func(s *Sequencer) { s.geo = g }
}

// A Sequencer drives the trigger emulation: it groups frames by clock tick,
// builds the hit matrix of every sampled tick and runs it through the
// pattern engine.
//
// The trigger board runs at 1600 ns while frames are tagged with 800 ns
// ticks: only even ticks are sampled.
//
// A Sequencer is not safe for concurrent use.
//
type Sequencer struct {
	geo     Geometry
	workers int
	log     logrus.FieldLogger
	state   State
	runID   uuid.UUID

	builder *HitMatrixBuilder
	engine  *PatternEngine
	agg     Aggregator

	records  []TrackerRecord
	matrices []GeigerMatrixSnapshot
}

// NewSequencer returns an Idle sequencer.
//
func NewSequencer(opts ...Option) (*Sequencer, error) {
	s := &Sequencer{
		geo: Reference(),
		log: discardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.geo.Validate(); err != nil {
		return nil, err
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(-1)
	}
	if s.workers <= 0 {
		s.workers = 1
	}
	return s, nil
}

// Geometry returns a copy of the geometry of s.
//
func (s *Sequencer) Geometry() Geometry { return s.geo }

// State returns the current state of s.
//
func (s *Sequencer) State() State { return s.state }

// RunID returns the id of the last run, or the zero UUID if s never ran. An
// aborted run keeps its id so that it matches the "run aborted" log entry.
//
func (s *Sequencer) RunID() uuid.UUID { return s.runID }

// Initialize binds the address translator and the five trigger memories.
//
func (s *Sequencer) Initialize(tr Translator, tables lut.Set) error {
	if s.state != Idle {
		return ErrAlreadyInitialized
	}
	if tr == nil {
		return ErrNoTranslator
	}
	for id := lut.Mem1; id < lut.NumMemories; id++ {
		if tables[id] == nil {
			return errors.Wrap(ErrMissingTable, id.String())
		}
	}
	if err := tables.Check(); err != nil {
		return err
	}
	s.builder = NewHitMatrixBuilder(&s.geo, tr, s.log)
	s.engine = NewPatternEngine(&s.geo, tables)
	s.state = Initialized
	s.log.WithField("workers", s.workers).Info("tracker trigger initialized")
	return nil
}

type tickResult struct {
	record TrackerRecord
	matrix GeigerMatrixSnapshot
}

// Run processes frames. It returns after all sampled ticks have been
// processed. Records are available from Records in increasing tick order.
//
func (s *Sequencer) Run(frames []Frame) error {
	switch s.state {
	case Idle:
		return ErrNotInitialized
	case Running, Done:
		return ErrAlreadyRun
	}
	s.state = Running
	s.runID = uuid.New()
	log := s.log.WithField("run", s.runID.String())
	start := time.Now()

	groups := groupByTick(frames)
	log.WithFields(logrus.Fields{
		"frames": len(frames),
		"ticks":  len(groups),
	}).Info("run started")

	res := make([]tickResult, len(groups))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range groups {
		g.Go(func() error {
			r, err := s.process(log, groups[i].tick, groups[i].frames)
			if err != nil {
				return err
			}
			res[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.state = Initialized
		log.WithError(err).Error("run aborted")
		return err
	}

	s.records = make([]TrackerRecord, 0, len(res))
	s.matrices = make([]GeigerMatrixSnapshot, 0, len(res))
	for i := range res {
		r := &res[i]
		s.agg.Add(&r.record)
		s.records = append(s.records, r.record)
		s.matrices = append(s.matrices, r.matrix)
		log.WithFields(logrus.Fields{
			"tick":     r.record.Tick,
			"hits":     r.matrix.Matrix.Count(),
			"words":    r.record.String(),
			"decision": r.record.Decision,
		}).Debug("tick processed")
	}
	s.state = Done
	log.WithFields(logrus.Fields{
		"ticks":    len(groups),
		"records":  len(s.records),
		"decision": s.agg.Decision(),
		"elapsed":  time.Since(start),
	}).Info("run done")
	return nil
}

func (s *Sequencer) process(log logrus.FieldLogger, tick int32, frames []*Frame) (tickResult, error) {
	m, err := s.builder.Build(frames)
	if err != nil {
		return tickResult{}, err
	}
	sz, zones := s.engine.Zones(m)
	for side := range sz {
		for i := range sz[side] {
			z := &sz[side][i]
			if z.IO == 0 && z.LR == 0 {
				continue
			}
			log.WithFields(logrus.Fields{
				"tick":    tick,
				"side":    side,
				"sliding": i,
				"layers":  bits.FormatUint(z.LayerProjection, uint(s.geo.Layers)),
				"rows":    bits.FormatUint(z.RowProjection, SlidingZoneWidth),
				"io":      bits.FormatUint(z.IO, 2),
				"lr":      bits.FormatUint(z.LR, 2),
			}).Debug("sliding zone")
		}
	}
	return tickResult{
		record: Record(tick, &zones),
		matrix: GeigerMatrixSnapshot{Tick: tick, Matrix: m},
	}, nil
}

type tickGroup struct {
	tick   int32
	frames []*Frame
}

// groupByTick returns the non-empty frame groups of the sampled ticks in
// increasing tick order. Sampling starts at the first even tick not before
// the earliest frame.
//
func groupByTick(frames []Frame) []tickGroup {
	if len(frames) == 0 {
		return nil
	}
	lo, hi := frames[0].Tick, frames[0].Tick
	for i := range frames {
		t := frames[i].Tick
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	if lo&1 != 0 {
		lo++
	}
	byTick := make(map[int32][]*Frame)
	for i := range frames {
		t := frames[i].Tick
		if t < lo || t > hi || (t-lo)&1 != 0 {
			continue
		}
		byTick[t] = append(byTick[t], &frames[i])
	}
	groups := make([]tickGroup, 0, len(byTick))
	for t, fs := range byTick {
		groups = append(groups, tickGroup{t, fs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].tick < groups[j].tick })
	return groups
}

// Records returns the records of the last run.
//
func (s *Sequencer) Records() []TrackerRecord { return s.records }

// Matrices returns the hit matrix snapshots of the last run, one per record.
//
func (s *Sequencer) Matrices() []GeigerMatrixSnapshot { return s.matrices }

// Decision returns true if any record of the last run decided true.
//
func (s *Sequencer) Decision() bool { return s.agg.Decision() }

// Reset clears the outputs of the last run so that s can run again with the
// same translator and tables.
//
func (s *Sequencer) Reset() error {
	if s.state == Idle {
		return ErrNotInitialized
	}
	s.records = nil
	s.matrices = nil
	s.agg.Reset()
	s.state = Initialized
	return nil
}
