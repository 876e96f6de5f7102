// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package arc

import (
	"encoding/binary"

	"github.com/dsnet/golib/errs"

	"github.com/thinknlive/obscura/arc/internal/lzwcode"
	"github.com/thinknlive/obscura/arc/internal/xrand"
	"github.com/thinknlive/obscura/internal/telemetry"
)

// config collects the options passed to NewCodec before they are
// resolved into a Codec's derived secret material.
type config struct {
	key        []byte
	pin        uint32
	ivLength   int
	codingStep uint32
	trace      telemetry.TraceFunc
}

// Option configures a Codec at construction time.
type Option func(*config)

// WithKey sets the obfuscation key. An empty or omitted key means "no
// key preamble".
func WithKey(key []byte) Option {
	return func(c *config) { c.key = append([]byte(nil), key...) }
}

// WithPIN sets the PIN used, together with a nonzero IV length, to seed
// the preamble PRNG. A zero PIN means "no PRNG seed derived from pin".
func WithPIN(pin uint32) Option {
	return func(c *config) { c.pin = pin }
}

// WithIVLength sets the number of IV bytes encoded ahead of the key
// preamble. Zero means "no IV preamble".
func WithIVLength(n int) Option {
	return func(c *config) { c.ivLength = n }
}

// WithCodingStep sets the model's adaptation step. Zero selects the
// package default.
func WithCodingStep(step uint32) Option {
	return func(c *config) { c.codingStep = step }
}

// WithTrace installs a telemetry hook called on every phase transition.
// Tracing is an ambient concern; the default is telemetry.Nop.
func WithTrace(fn telemetry.TraceFunc) Option {
	return func(c *config) { c.trace = fn }
}

// Codec is the Orchestrator: it owns the derived secret material for a
// given (key, pin, iv_length) tuple and exposes the four public
// operations. A single Codec may be reused across many Encode/Decode
// calls; each call constructs its own Model, ArithmeticCoder, and (for
// the LZW variants) LZWCoder, so concurrent calls on the same Codec do
// not share mutable coder state — only the derived secret material,
// which is read-only after construction.
type Codec struct {
	codingStep uint32
	ivLength   int
	trace      telemetry.TraceFunc

	havePRNG   bool
	prngSeed   uint32
	encryptKey []byte // 4 bytes, nil if no key was supplied
}

// NewCodec derives secret material from opts and returns a ready Codec.
// Construction fails only if ivLength is negative.
func NewCodec(opts ...Option) (*Codec, error) {
	cfg := config{trace: telemetry.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ivLength < 0 {
		return nil, Error("negative iv length")
	}
	if cfg.trace == nil {
		cfg.trace = telemetry.Nop
	}

	c := &Codec{
		codingStep: cfg.codingStep,
		ivLength:   cfg.ivLength,
		trace:      cfg.trace,
	}

	hash := xrand.NewFNV()
	if c.ivLength > 0 && cfg.pin > 0 {
		var pinBytes [4]byte
		binary.BigEndian.PutUint32(pinBytes[:], cfg.pin)
		c.prngSeed = hash.ComputeHash(pinBytes[:])
		c.havePRNG = true
	}
	if len(cfg.key) > 0 {
		keyHash := hash.ComputeHash(cfg.key)
		c.encryptKey = make([]byte, 4)
		binary.BigEndian.PutUint32(c.encryptKey, keyHash)
		if !c.havePRNG && c.ivLength > 0 {
			c.prngSeed = binary.BigEndian.Uint32(c.encryptKey)
			c.havePRNG = true
		}
	}
	return c, nil
}

// Encode compresses and obfuscates payload.
func (c *Codec) Encode(payload []byte) (out []byte, err error) {
	defer func() {
		if err != nil {
			err = &EncodeError{Err: err}
		}
	}()
	defer errs.Recover(&err)

	out = c.encodeSymbols(payload)
	return out, nil
}

// Decode reverses Encode. A key/pin/iv mismatch, or input that runs out
// before the payload's EOF symbol, is reported as a nil slice with a nil
// error, per the package's AuthMismatch contract; any other structural
// failure (input exhausted inside the preamble, model overflow) is
// reported as a non-nil *DecodeError.
func (c *Codec) Decode(data []byte) (out []byte, err error) {
	defer func() {
		if err != nil {
			err = &DecodeError{Err: err}
		}
	}()
	defer errs.Recover(&err)

	symbols, ok := c.decodeSymbols(data)
	if !ok {
		return nil, nil
	}
	return symbols, nil
}

// LZWEncode runs payload through the LZW byte->code transform before
// arithmetic coding, splitting each 16-bit code into a high-byte half
// stream followed by a low-byte half stream so the adaptive model can
// learn each half's distribution independently.
func (c *Codec) LZWEncode(payload []byte) (out []byte, err error) {
	defer func() {
		if err != nil {
			err = &EncodeError{Err: err}
		}
	}()
	defer errs.Recover(&err)

	codes := lzwcode.NewEncoder().Encode(payload)
	stream := make([]byte, 0, 2*len(codes))
	for _, code := range codes {
		stream = append(stream, byte(code>>8))
	}
	for _, code := range codes {
		stream = append(stream, byte(code))
	}
	out = c.encodeSymbols(stream)
	return out, nil
}

// LZWDecode reverses LZWEncode.
func (c *Codec) LZWDecode(data []byte) (out []byte, err error) {
	defer func() {
		if err != nil {
			err = &DecodeError{Err: err}
		}
	}()
	defer errs.Recover(&err)

	stream, ok := c.decodeSymbols(data)
	if !ok {
		return nil, nil
	}
	if len(stream)%2 != 0 {
		panic(ErrBadCompressed)
	}
	n := len(stream) / 2
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		codes[i] = int(stream[i])<<8 | int(stream[n+i])
	}
	decoded, derr := lzwcode.NewDecoder().Decode(codes)
	if derr != nil {
		panic(ErrBadCompressed)
	}
	return decoded, nil
}

// encodeSymbols runs the full PREAMBLE_IV -> PREAMBLE_KEY -> PAYLOAD ->
// DONE state machine for encoding, treating symbols as the payload's
// literal bytes (already LZW-split, for the LZW variant).
func (c *Codec) encodeSymbols(symbols []byte) []byte {
	model, err := NewModel(c.codingStep)
	errs.Panic(err)
	sink := NewBitSink()
	enc := newEncoder(model, sink)

	if c.havePRNG {
		prng := xrand.NewLehmer(c.prngSeed)
		prng.Reset()
		prev := -1
		for i := 0; i < c.ivLength; i++ {
			b := int(prng.Next() % 255)
			errs.Panic(model.SetSymbolMagic(b, prev))
			enc.EncodeSymbol(b)
			prev = b
		}
		model.ResetModelSymbols()
		c.trace(telemetry.PhasePreambleIV, c.ivLength)
	}

	if c.encryptKey != nil {
		prev := -1
		for _, kb := range c.encryptKey {
			b := int(kb)
			errs.Panic(model.SetSymbolMagic(b, prev))
			enc.EncodeSymbol(b)
			prev = b
		}
		model.ResetModelSymbols()
		c.trace(telemetry.PhasePreambleKey, len(c.encryptKey))
	}

	for _, b := range symbols {
		enc.EncodeSymbol(int(b))
		errs.Panic(model.Update(int(b)))
	}
	enc.EncodeSymbol(EOFSymbol)
	c.trace(telemetry.PhasePayload, len(symbols))

	out := enc.Finish()
	c.trace(telemetry.PhaseDone, len(out))
	return out
}

// decodeSymbols runs the mirrored state machine. ok is false exactly
// when a preamble symbol failed to match its expected value (an
// AuthMismatch), the payload loop observed a symbol outside the
// literal-byte range without first reaching EOF, or the input ran out
// (ErrInputExhausted) during the payload loop.
func (c *Codec) decodeSymbols(data []byte) (symbols []byte, ok bool) {
	inPayload := false
	defer func() {
		if inPayload {
			if r := recover(); r != nil {
				if r != ErrInputExhausted {
					panic(r)
				}
				symbols, ok = nil, false
			}
		}
	}()

	model, err := NewModel(c.codingStep)
	errs.Panic(err)
	source := NewBitSource(data)
	dec := newDecoder(model, source)

	if c.havePRNG {
		prng := xrand.NewLehmer(c.prngSeed)
		prng.Reset()
		prev := -1
		for i := 0; i < c.ivLength; i++ {
			expect := int(prng.Next() % 255)
			errs.Panic(model.SetSymbolMagic(expect, prev))
			got := dec.DecodeSymbol()
			if got != expect {
				return nil, false
			}
			prev = expect
		}
		model.ResetModelSymbols()
		c.trace(telemetry.PhasePreambleIV, c.ivLength)
	}

	if c.encryptKey != nil {
		prev := -1
		for _, kb := range c.encryptKey {
			expect := int(kb)
			errs.Panic(model.SetSymbolMagic(expect, prev))
			got := dec.DecodeSymbol()
			if got != expect {
				return nil, false
			}
			prev = expect
		}
		model.ResetModelSymbols()
		c.trace(telemetry.PhasePreambleKey, len(c.encryptKey))
	}

	inPayload = true
	var out []byte
	for {
		sym := dec.DecodeSymbol()
		if sym == EOFSymbol {
			break
		}
		if sym < 0 || sym >= NumberOfChars {
			return nil, false
		}
		out = append(out, byte(sym))
		errs.Panic(model.Update(sym))
	}
	c.trace(telemetry.PhasePayload, len(out))
	c.trace(telemetry.PhaseDone, len(out))
	return out, true
}
