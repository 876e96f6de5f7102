// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package arc

import "testing"

func TestNewModelInitialTotals(t *testing.T) {
	m, err := NewModel(256)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	want := uint32(NumberOfChars*128 + 2)
	for i := 0; i < NumSymbols; i++ {
		if got := m.contextTable[i].Total(); got != want {
			t.Fatalf("context %d total = %d, want %d", i, got, want)
		}
	}
}

func TestModelUpdateAdvancesContext(t *testing.T) {
	m, err := NewModel(256)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if m.CurrentTable() != m.contextTable[0] {
		t.Fatal("initial current table should be context 0")
	}
	if err := m.Update(65); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if m.CurrentTable() != m.contextTable[65] {
		t.Fatal("after encoding 65, current table should be context 65")
	}
}

func TestSetSymbolMagicDominatesTable(t *testing.T) {
	m, err := NewModel(256)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.SetSymbolMagic(10, -1); err != nil {
		t.Fatalf("SetSymbolMagic: %v", err)
	}
	tbl := m.CurrentTable()
	if got, want := tbl.Get(10), MaxFrequency-uint32(NumSymbols); got != want {
		t.Fatalf("magic slot = %d, want %d", got, want)
	}
	if tbl.Total() > MaxFrequency {
		t.Fatalf("magic table total %d exceeds MaxFrequency", tbl.Total())
	}

	if err := m.SetSymbolMagic(20, 10); err != nil {
		t.Fatalf("SetSymbolMagic chained: %v", err)
	}
	if got := tbl.Get(10); got != 1 {
		t.Fatalf("previous magic slot 10 = %d, want 1", got)
	}
	if got, want := tbl.Get(20), MaxFrequency-uint32(NumSymbols); got != want {
		t.Fatalf("new magic slot 20 = %d, want %d", got, want)
	}
}

func TestResetModelSymbolsRestoresInitialShape(t *testing.T) {
	m, err := NewModel(256)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	m.Update(3)
	m.Update(3)
	m.ResetModelSymbols()
	if m.prevSymbol != -1 {
		t.Fatalf("prevSymbol = %d after reset, want -1", m.prevSymbol)
	}
	want := uint32(NumberOfChars*128 + 2)
	for i := 0; i < NumSymbols; i++ {
		if got := m.contextTable[i].Total(); got != want {
			t.Fatalf("context %d total after reset = %d, want %d", i, got, want)
		}
	}
}

func TestUpdateRescalesOnOverflow(t *testing.T) {
	m, err := NewModel(1 << 20)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	for i := 0; i < 2000; i++ {
		if err := m.Update(7); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if total := m.contextTotal[7]; total > MaxFrequency {
		t.Fatalf("contextTotal[7] = %d, exceeds MaxFrequency after rescaling", total)
	}
}
