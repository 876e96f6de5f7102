// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package arc

import "github.com/thinknlive/obscura/arc/internal/fenwick"

// tableSource names which table Model.CurrentTable exposes: the per-context
// order-1 tree, or the scratch preamble table. Tagging the source
// explicitly, rather than aliasing a *fenwick.Table pointer back and
// forth, keeps the swap a plain value comparison instead of a pointer
// reassignment that the coder would need to track across calls.
type tableSource int

const (
	sourceContext tableSource = iota
	sourceMagic
)

// Model is the order-1 adaptive frequency model: one Fenwick table per
// previous-symbol context, plus a scratch table used only while encoding
// or decoding the key/IV preamble.
type Model struct {
	contextTable []*fenwick.Table
	contextTotal []uint32
	magicTable   *fenwick.Table

	prevSymbol int // -1 means no prior symbol this phase
	source     tableSource
	codingStep uint32
}

// NewModel builds a Model whose codingStep governs how fast counts
// adapt. A codingStep of zero is replaced with the package default.
func NewModel(codingStep uint32) (*Model, error) {
	if codingStep == 0 {
		codingStep = defaultCodingStep
	}
	m := &Model{
		contextTable: make([]*fenwick.Table, NumSymbols),
		contextTotal: make([]uint32, NumSymbols),
		magicTable:   fenwick.New(NumSymbols),
		prevSymbol:   -1,
		codingStep:   codingStep,
	}
	initial := initialCounts()
	for i := range m.contextTable {
		m.contextTable[i] = fenwick.NewFromCounts(initial)
		total := m.contextTable[i].Total()
		if total > MaxFrequency {
			return nil, ErrModelOverflow
		}
		m.contextTotal[i] = total
	}
	return m, nil
}

// initialCounts returns the starting underlying array shared by every
// context table: 128 for each of the 256 literal slots, 1 for the
// unused slot, 1 for EOF.
func initialCounts() []uint32 {
	counts := make([]uint32, NumSymbols)
	for i := 0; i < NumberOfChars; i++ {
		counts[i] = 128
	}
	counts[unusedSymbol] = 1
	counts[EOFSymbol] = 1
	return counts
}

// CurrentTable returns the table the coder should use for the next
// symbol.
func (m *Model) CurrentTable() *fenwick.Table {
	if m.source == sourceMagic {
		return m.magicTable
	}
	ctx := m.prevSymbol
	if ctx < 0 {
		ctx = 0
	}
	return m.contextTable[ctx]
}

// Update folds symbol into the model after it has been coded using
// CurrentTable's table, then advances prevSymbol so the next call to
// CurrentTable selects symbol's own context.
func (m *Model) Update(symbol int) error {
	c := m.prevSymbol
	if c < 0 {
		c = symbol
	}
	if m.contextTotal[c] > MaxFrequency {
		m.contextTable[c].Scale(ScaleValue)
		m.contextTotal[c] = m.contextTable[c].Total()
	}
	m.contextTable[c].Add(symbol, m.codingStep)
	m.contextTotal[c] += m.codingStep

	m.prevSymbol = symbol
	m.source = sourceContext
	return nil
}

// SetSymbolMagic installs a near-deterministic table that spends
// essentially zero bits coding symbol, while still requiring the
// decoder to reach identical state to decode it correctly. prevSymbol is
// the previous preamble byte (not the model's own order-1 context), or
// -1 for the first byte of a preamble phase.
func (m *Model) SetSymbolMagic(symbol, prevSymbol int) error {
	if prevSymbol < 0 {
		counts := make([]uint32, NumSymbols)
		for i := range counts {
			counts[i] = 1
		}
		m.magicTable.Reset(counts)
		m.magicTable.Set(symbol, MaxFrequency-uint32(NumSymbols))
		m.source = sourceMagic
	} else {
		cur := m.CurrentTable()
		cur.Set(prevSymbol, 1)
		cur.Set(symbol, MaxFrequency-uint32(NumSymbols))
	}
	if m.CurrentTable().Total() > MaxFrequency {
		return ErrModelOverflow
	}
	return nil
}

// ResetModelSymbols rebuilds every context table to its initial shape
// and clears prevSymbol, ready for a fresh phase (payload, or another
// preamble segment).
func (m *Model) ResetModelSymbols() {
	initial := initialCounts()
	for i := range m.contextTable {
		m.contextTable[i].Reset(initial)
		m.contextTotal[i] = m.contextTable[i].Total()
	}
	m.prevSymbol = -1
	m.source = sourceContext
}
