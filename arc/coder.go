// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package arc

// encoder is the encoding half of the adaptive arithmetic coder. It
// queries model for the current cumulative-frequency table on every
// call to EncodeSymbol rather than holding a back-reference the model
// would need to keep in sync; see the package design notes.
type encoder struct {
	model        *Model
	sink         *BitSink
	low, high    uint64
	bitsToFollow int
}

func newEncoder(model *Model, sink *BitSink) *encoder {
	return &encoder{model: model, sink: sink, low: 0, high: TopValue}
}

// EncodeSymbol narrows [low, high] to symbol's sub-range within the
// model's current table and renormalizes.
func (e *encoder) EncodeSymbol(symbol int) {
	table := e.model.CurrentTable()
	lo := uint64(table.PrefixSum(symbol))
	hi := uint64(table.PrefixSum(symbol + 1))
	total := uint64(table.Total())

	rng := e.high - e.low + 1
	e.high = e.low + (rng*hi)/total - 1
	e.low = e.low + (rng*lo)/total
	e.renormalize()
}

func (e *encoder) renormalize() {
	for {
		switch {
		case e.high < Half:
			e.sink.WriteBit(0)
			e.followBits(1)
		case e.low >= Half:
			e.sink.WriteBit(1)
			e.followBits(0)
			e.low -= Half
			e.high -= Half
		case e.low >= Quarter && e.high < ThirdQuarter:
			e.bitsToFollow++
			e.low -= Quarter
			e.high -= Quarter
		default:
			return
		}
		e.low *= 2
		e.high = e.high*2 + 1
	}
}

func (e *encoder) followBits(b uint) {
	for ; e.bitsToFollow > 0; e.bitsToFollow-- {
		e.sink.WriteBit(b)
	}
}

// Finish emits the terminating bits that let the decoder resolve
// low/high's final straddle (one bit followed by bitsToFollow+1
// opposite bits, so at least two), then flushes the underlying sink.
func (e *encoder) Finish() []byte {
	e.bitsToFollow++
	if e.low < Quarter {
		e.sink.WriteBit(0)
		e.followBits(1)
	} else {
		e.sink.WriteBit(1)
		e.followBits(0)
	}
	return e.sink.Finish()
}

// decoder is the decoding half of the coder.
type decoder struct {
	model            *Model
	source           *BitSource
	low, high, value uint64
}

func newDecoder(model *Model, source *BitSource) *decoder {
	d := &decoder{model: model, source: source, low: 0, high: TopValue}
	for i := 0; i < CodeValueBits; i++ {
		d.value = d.value*2 + uint64(source.ReadBit())
	}
	return d
}

// DecodeSymbol recovers the next symbol using the model's current table,
// then advances low/high/value identically to the encoder.
func (d *decoder) DecodeSymbol() int {
	table := d.model.CurrentTable()
	total := uint64(table.Total())

	rng := d.high - d.low + 1
	cum := ((d.value-d.low+1)*total - 1) / rng
	if cum >= total {
		cum = total - 1
	}
	symbol := table.RankQuery(uint32(cum))

	lo := uint64(table.PrefixSum(symbol))
	hi := uint64(table.PrefixSum(symbol + 1))
	d.high = d.low + (rng*hi)/total - 1
	d.low = d.low + (rng*lo)/total
	d.renormalize()
	return symbol
}

func (d *decoder) renormalize() {
	for {
		switch {
		case d.high < Half:
			// The encoder subtracts nothing in this case, so neither
			// does the decoder.
		case d.low >= Half:
			d.low -= Half
			d.high -= Half
			d.value -= Half
		case d.low >= Quarter && d.high < ThirdQuarter:
			d.low -= Quarter
			d.high -= Quarter
			d.value -= Quarter
		default:
			return
		}
		d.low *= 2
		d.high = d.high*2 + 1
		d.value = d.value*2 + uint64(d.source.ReadBit())
	}
}
