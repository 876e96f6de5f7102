// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lzwcode implements the byte<->16-bit-code LZW transform used
// as the optional front end to the arithmetic coder. Unlike a textbook
// LZW encoder, which rehashes a byte-slice key on every lookup, the
// encoder here tracks the current match as a (parent code, extension
// byte) pair: matching a longer prefix is a single map lookup keyed on
// an integer pair rather than an allocation of a new byte slice.
package lzwcode

// EOB is the reserved code that resets the dictionary mid-stream.
const EOB = 0

// Capacity bounds the number of entries either dictionary may hold
// before a reset is required.
const Capacity = 1 << 15

// rootCode is the sentinel "parent" denoting the empty sequence, which
// occupies code 0 in both dictionaries conceptually but is never looked
// up directly (every real lookup starts from a non-empty prefix).
const rootCode = -1

// ErrBadCode reports an LZW code that is neither a known dictionary
// entry nor the dictionary's own size (the KwKwK special case).
type ErrBadCode int

func (e ErrBadCode) Error() string { return "lzwcode: invalid code in compressed stream" }

type dictKey struct {
	parent int
	ext    byte
}

// Encoder converts bytes into LZW codes.
type Encoder struct {
	dict map[dictKey]int
	size int
}

// NewEncoder returns an Encoder with a freshly initialized dictionary.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.reset()
	return e
}

func (e *Encoder) reset() {
	e.dict = make(map[dictKey]int, 256)
	for b := 0; b < 256; b++ {
		e.dict[dictKey{parent: rootCode, ext: byte(b)}] = b + 1
	}
	e.size = 257 // the empty sequence (code 0) plus the 256 byte codes
}

// Encode converts data into a sequence of LZW codes, inserting EOB codes
// and resetting the dictionary whenever it fills up.
func (e *Encoder) Encode(data []byte) []int {
	var codes []int
	started := false
	code := rootCode

	for _, b := range data {
		if e.size >= Capacity {
			if started {
				codes = append(codes, code)
			}
			codes = append(codes, EOB)
			e.reset()
			started = false
			code = rootCode
		}

		if started {
			key := dictKey{parent: code, ext: b}
			if next, ok := e.dict[key]; ok {
				code = next
				continue
			}
			codes = append(codes, code)
			e.dict[key] = e.size
			e.size++
		}
		// w is now just [b]; every single byte is always a known
		// code (b+1) regardless of whether we just flushed it.
		code = int(b) + 1
		started = true
	}
	if started {
		codes = append(codes, code)
	}
	return codes
}

// Decoder converts LZW codes back into bytes.
type Decoder struct {
	dict [][]byte // index i holds the sequence for code i+257
	size int
}

// NewDecoder returns a Decoder with a freshly initialized dictionary.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.reset()
	return d
}

func (d *Decoder) reset() {
	d.dict = d.dict[:0]
	d.size = 257
}

func (d *Decoder) lookup(code int) ([]byte, bool) {
	if code >= 1 && code <= 256 {
		return []byte{byte(code - 1)}, true
	}
	idx := code - 257
	if idx >= 0 && idx < len(d.dict) {
		return d.dict[idx], true
	}
	return nil, false
}

func (d *Decoder) learn(seq []byte) {
	if d.size < Capacity {
		d.dict = append(d.dict, seq)
		d.size++
	}
}

// Decode converts codes back into the original byte sequence, or
// returns ErrBadCode if codes contains a value that is neither a known
// dictionary entry nor the dictionary's current size.
func (d *Decoder) Decode(codes []int) ([]byte, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	d.reset()

	i := 0
	first, ok := d.lookup(codes[i])
	if !ok {
		return nil, ErrBadCode(codes[i])
	}
	i++
	var out []byte
	out = append(out, first...)
	w := first

	for i < len(codes) {
		k := codes[i]
		i++
		if k == EOB {
			d.reset()
			if i >= len(codes) {
				break
			}
			next, ok := d.lookup(codes[i])
			if !ok {
				return nil, ErrBadCode(codes[i])
			}
			i++
			out = append(out, next...)
			w = next
			continue
		}

		entry, ok := d.lookup(k)
		switch {
		case ok:
			// entry already set.
		case k == d.size:
			entry = append(append([]byte{}, w...), w[0])
		default:
			return nil, ErrBadCode(k)
		}

		out = append(out, entry...)
		seq := append(append([]byte{}, w...), entry[0])
		d.learn(seq)
		w = entry
	}
	return out, nil
}
