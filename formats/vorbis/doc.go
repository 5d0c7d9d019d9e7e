// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Samples come out interleaved in the file's channel layout, already as
// float32 in [-1.0, 1.0]. This is the format the spatial demo ships its
// looping asset in.
package vorbis
