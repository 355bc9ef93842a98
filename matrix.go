// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

// A HitMatrix holds the hit state of every cell of one module for a single
// clock tick. Cells are indexed by side, layer and row.
//
type HitMatrix struct {
	layers int
	rows   int
	cells  []bool
}

// NewHitMatrix returns an empty matrix sized for g.
//
func NewHitMatrix(g *Geometry) *HitMatrix {
	return &HitMatrix{
		layers: g.Layers,
		rows:   g.Rows,
		cells:  make([]bool, NumSides*g.Layers*g.Rows),
	}
}

func (m *HitMatrix) index(side, layer, row int) int {
	return (side*m.layers+layer)*m.rows + row
}

// Contains returns true if (side, layer, row) is a cell of m.
//
func (m *HitMatrix) Contains(side, layer, row int) bool {
	return side >= 0 && side < NumSides &&
		layer >= 0 && layer < m.layers &&
		row >= 0 && row < m.rows
}

// At returns the state of a cell. It panics if the cell is out of range.
//
func (m *HitMatrix) At(side, layer, row int) bool {
	if !m.Contains(side, layer, row) {
		panic("cell out of range")
	}
	return m.cells[m.index(side, layer, row)]
}

// Set marks a cell as hit. Hits are never cleared. It panics if the cell is
// out of range.
//
func (m *HitMatrix) Set(side, layer, row int) {
	if !m.Contains(side, layer, row) {
		panic("cell out of range")
	}
	m.cells[m.index(side, layer, row)] = true
}

// Layers returns the number of layers per side.
//
func (m *HitMatrix) Layers() int { return m.layers }

// Rows returns the number of rows per layer.
//
func (m *HitMatrix) Rows() int { return m.rows }

// IsEmpty returns true if no cell is hit.
//
func (m *HitMatrix) IsEmpty() bool {
	for _, c := range m.cells {
		if c {
			return false
		}
	}
	return true
}

// Count returns the number of hit cells.
//
func (m *HitMatrix) Count() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// A Cell is the position of a cell in a HitMatrix.
//
type Cell struct {
	Side  int `json:"side" yaml:"side"`
	Layer int `json:"layer" yaml:"layer"`
	Row   int `json:"row" yaml:"row"`
}

// Hits returns the hit cells in side, layer, row order.
//
func (m *HitMatrix) Hits() []Cell {
	var hits []Cell
	for i, c := range m.cells {
		if !c {
			continue
		}
		row := i % m.rows
		sl := i / m.rows
		hits = append(hits, Cell{Side: sl / m.layers, Layer: sl % m.layers, Row: row})
	}
	return hits
}

// Equal returns true if m and o have the same shape and hits.
//
func (m *HitMatrix) Equal(o *HitMatrix) bool {
	if m.layers != o.layers || m.rows != o.rows {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// A GeigerMatrixSnapshot is a copy of the hit matrix of a tick.
//
type GeigerMatrixSnapshot struct {
	Tick   int32
	Matrix *HitMatrix
}
