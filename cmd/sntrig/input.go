// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/snemo/trigsim"
)

// inputFrame is a raw CTW frame. Blocks maps block slots to bit strings,
// msb first.
//
type inputFrame struct {
	Rack     int32          `yaml:"rack"`
	Crate    int32          `yaml:"crate"`
	Tick     int32          `yaml:"tick"`
	BoardIDs bool           `yaml:"board_ids"`
	Blocks   map[int]string `yaml:"blocks"`
}

type inputHit struct {
	Tick  int32 `yaml:"tick"`
	Side  int   `yaml:"side"`
	Layer int   `yaml:"layer"`
	Row   int   `yaml:"row"`
}

// inputFile holds raw frames and cell hits. Hits are encoded into frames
// through the reference mapping.
//
type inputFile struct {
	Frames []inputFrame `yaml:"frames"`
	Hits   []inputHit   `yaml:"hits"`
}

func decodeFrames(r io.Reader, enc trigsim.Encoder, module int) ([]trigsim.Frame, error) {
	var in inputFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode frames")
	}

	frames := make([]trigsim.Frame, 0, len(in.Frames))
	for i, f := range in.Frames {
		fr := trigsim.Frame{Rack: f.Rack, Crate: f.Crate, Tick: f.Tick}
		for slot, s := range f.Blocks {
			if slot < 0 || slot >= trigsim.BlocksPerFrame {
				return nil, errors.Errorf("frame %d: invalid block slot %d", i, slot)
			}
			if err := fr.SetBlockString(slot, s); err != nil {
				return nil, errors.Wrapf(err, "frame %d, block %d", i, slot)
			}
		}
		if f.BoardIDs {
			fr.SetBoardIDs()
		}
		frames = append(frames, fr)
	}

	byTick := make(map[int32][]trigsim.GeomAddress)
	for _, h := range in.Hits {
		byTick[h.Tick] = append(byTick[h.Tick], trigsim.GeomAddress{Module: module, Side: h.Side, Layer: h.Layer, Row: h.Row})
	}
	ticks := make([]int32, 0, len(byTick))
	for t := range byTick {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	for _, t := range ticks {
		fs, err := trigsim.EncodeFrames(enc, t, byTick[t]...)
		if err != nil {
			return nil, err
		}
		frames = append(frames, fs...)
	}
	return frames, nil
}

func readFrames(name string, enc trigsim.Encoder, module int) ([]trigsim.Frame, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "read frames")
	}
	defer f.Close()
	frames, err := decodeFrames(f, enc, module)
	return frames, errors.Wrap(err, name)
}
