// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A HitMatrixBuilder decodes the CTW frames of a tick into a HitMatrix.
//
type HitMatrixBuilder struct {
	geo *Geometry
	tr  Translator
	log logrus.FieldLogger
}

// NewHitMatrixBuilder returns a builder translating channels with tr. A nil
// log discards messages.
//
func NewHitMatrixBuilder(g *Geometry, tr Translator, log logrus.FieldLogger) *HitMatrixBuilder {
	if log == nil {
		log = discardLogger()
	}
	return &HitMatrixBuilder{geo: g, tr: tr, log: log}
}

// Build returns the hit matrix of frames. All frames are expected to share
// the same tick.
//
func (b *HitMatrixBuilder) Build(frames []*Frame) (*HitMatrix, error) {
	m := NewHitMatrix(b.geo)
	for _, f := range frames {
		if err := b.Fill(m, f); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Fill sets the cells of m hit in frame f. Channels wired outside the
// emulated module are skipped.
//
func (b *HitMatrixBuilder) Fill(m *HitMatrix, f *Frame) error {
	for slot := range f.Blocks {
		blk := &f.Blocks[slot]
		if blk.Field(0, ThreeWireChannels) == 0 {
			continue
		}
		board := f.BoardID(slot)
		for ch := 0; ch < ThreeWireChannels; ch++ {
			if !blk.Test(uint(ch)) {
				continue
			}
			ea := ElectronicAddress{Rack: int(f.Rack), Crate: int(f.Crate), Board: board, Channel: ch}
			ga, err := b.tr.Translate(ea)
			if err != nil {
				return errors.Wrapf(err, "tick %d: translate %v", f.Tick, ea)
			}
			if !b.tr.IsInModule(ga) {
				b.log.WithFields(logrus.Fields{
					"tick":    f.Tick,
					"channel": ea.String(),
					"cell":    ga.String(),
				}).Debug("hit outside module skipped")
				continue
			}
			if !m.Contains(ga.Side, ga.Layer, ga.Row) {
				return errors.Wrapf(ErrInvalidAddress, "tick %d: %v -> %v", f.Tick, ea, ga)
			}
			m.Set(ga.Side, ga.Layer, ga.Row)
		}
	}
	return nil
}
