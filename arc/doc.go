// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package arc implements an order-1 adaptive arithmetic coder, an
// optional LZW byte-to-code front end, and a Codec that obfuscates a
// payload behind a key/PIN/IV preamble coded through the same
// adaptive model.
package arc
