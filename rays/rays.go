// Package rays is a CPU implementation of the god rays fragment shader.
//
// It mirrors the GPU program term for term so frames can be rendered
// without a graphics context and so the shader math can be tested.
package rays

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray describes one light shaft source.
type Ray struct {
	// Origin is given as a fraction of the viewport size.
	Origin    mgl32.Vec2
	Direction mgl32.Vec2
	SeedA     float32
	SeedB     float32
	Speed     float32
	Weight    float32
}

// Rays are the two sources evaluated per fragment.
var Rays = [2]Ray{
	{
		Origin:    mgl32.Vec2{0.5, -0.4},
		Direction: mgl32.Vec2{1.0, -0.116}.Normalize(),
		SeedA:     36.2214,
		SeedB:     21.11349,
		Speed:     1.5,
		Weight:    0.5,
	},
	{
		Origin:    mgl32.Vec2{0.5, -0.6},
		Direction: mgl32.Vec2{1.0, 0.241}.Normalize(),
		SeedA:     22.39910,
		SeedB:     18.0234,
		Speed:     1.1,
		Weight:    0.4,
	},
}

// Channel gains as (base, slope) of the depth brightness.
var (
	redGain   = mgl32.Vec2{0.1, 0.8}
	greenGain = mgl32.Vec2{0.3, 0.6}
	blueGain  = mgl32.Vec2{0.5, 0.5}
)

// Intensity is the time-phased brightness of a ray at coord, before
// distance attenuation. The result is always in [0, 1].
func Intensity(source, refDirection, coord mgl32.Vec2, seedA, seedB, speed, time float32) float32 {
	var cosAngle float32
	if d := coord.Sub(source); d.Len() > 0 {
		cosAngle = d.Normalize().Dot(refDirection)
	}
	phase := float64(time * speed)
	a := 0.45 + 0.15*math.Sin(float64(cosAngle*seedA)+phase)
	b := 0.3 + 0.2*math.Cos(float64(-cosAngle*seedB)+phase)
	return mgl32.Clamp(float32(a+b), 0, 1)
}

// Attenuation weakens a ray with distance from its source relative to the
// viewport width. The result is in [0.5, 1].
func Attenuation(distance, width float32) float32 {
	if width <= 0 {
		return 0.5
	}
	return mgl32.Clamp((width-distance)/width, 0.5, 1)
}

// Strength is the attenuated brightness of a ray at coord.
func Strength(source, refDirection, coord mgl32.Vec2, seedA, seedB, speed, time, width float32) float32 {
	return Intensity(source, refDirection, coord, seedA, seedB, speed, time) *
		Attenuation(coord.Sub(source).Len(), width)
}

// Source returns the ray origin in pixels for a viewport.
func (r Ray) Source(resolution mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{resolution[0] * r.Origin[0], resolution[1] * r.Origin[1]}
}

// Shade computes the colour at coord, a pixel position measured from the
// top-left corner of a viewport of the given resolution.
func Shade(coord, resolution mgl32.Vec2, time float32) mgl32.Vec4 {
	var sum float32
	for _, r := range Rays {
		sum += r.Weight * Strength(r.Source(resolution), r.Direction, coord,
			r.SeedA, r.SeedB, r.Speed, time, resolution[0])
	}

	brightness := Depth(coord[1], resolution[1])
	return mgl32.Vec4{
		sum * (redGain[0] + brightness*redGain[1]),
		sum * (greenGain[0] + brightness*greenGain[1]),
		sum * (blueGain[0] + brightness*blueGain[1]),
		sum,
	}
}

// Depth is 1 at the top of the viewport and 0 at the bottom.
func Depth(y, height float32) float32 {
	if height <= 0 {
		return 0
	}
	return 1 - y/height
}
