// SPDX-License-Identifier: EPL-2.0

// Package spatial computes per-ear gains for a point emitter heard by a
// listener with two ears.
package spatial

import (
	"fmt"
	"math"
)

// Vec3 is a position in listener space. Units are arbitrary but shared by
// every position in an EmitterState.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

func (v Vec3) LenSq() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Len() float64   { return math.Sqrt(v.LenSq()) }

func (v Vec3) String() string { return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z) }

// EmitterState places an emitter relative to a listener. LeftEar and
// RightEar are offsets from Listener.
type EmitterState struct {
	Emitter  Vec3
	Listener Vec3
	LeftEar  Vec3
	RightEar Vec3
}

// Gains returns the left and right channel gains, each in [0, 1].
//
// Each gain is the product of an inverse-square distance term, capped at 1
// within a unit distance, and an inter-aural term that ranges from 0.5 for
// the far ear to 1 for the near ear when the emitter sits on the ear axis.
func (s EmitterState) Gains() (left, right float64) {
	l := s.Listener.Add(s.LeftEar)
	r := s.Listener.Add(s.RightEar)

	lSq := s.Emitter.Sub(l).LenSq()
	rSq := s.Emitter.Sub(r).LenSq()
	lDist, rDist := math.Sqrt(lSq), math.Sqrt(rSq)

	left = math.Min(1/lSq, 1)
	right = math.Min(1/rSq, 1)

	ears := r.Sub(l).Len()
	if ears == 0 {
		return left * 0.75, right * 0.75
	}

	left *= math.Min(((rDist-lDist)/ears+1)/4+0.5, 1)
	right *= math.Min(((lDist-rDist)/ears+1)/4+0.5, 1)

	return left, right
}
