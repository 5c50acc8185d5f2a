// Package test - deterministic synthetic network outputs for pose pipeline
// tests: Gaussian part bumps and painted limb vector fields.
package test

import (
	"image"
	"math"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/skeleton"
)

// Layout is an upright person, about 90 pixels tall, indexed by PartType.
var Layout = [skeleton.PartCount]image.Point{
	skeleton.Nose:          {50, 40},
	skeleton.Neck:          {50, 55},
	skeleton.RightShoulder: {35, 55},
	skeleton.RightElbow:    {30, 70},
	skeleton.RightWrist:    {28, 85},
	skeleton.LeftShoulder:  {65, 55},
	skeleton.LeftElbow:     {70, 70},
	skeleton.LeftWrist:     {72, 85},
	skeleton.RightHip:      {42, 90},
	skeleton.RightKnee:     {42, 108},
	skeleton.RightAnkle:    {42, 126},
	skeleton.LeftHip:       {58, 90},
	skeleton.LeftKnee:      {58, 108},
	skeleton.LeftAnkle:     {58, 126},
	skeleton.RightEye:      {46, 36},
	skeleton.LeftEye:       {54, 36},
	skeleton.RightEar:      {40, 40},
	skeleton.LeftEar:       {60, 40},
}

// Person is one synthetic person placed in a scene.
type Person struct {
	// Parts holds the position of every part.
	Parts [skeleton.PartCount]image.Point
	// Present marks the parts that are drawn.
	Present [skeleton.PartCount]bool
	// Score is the heatmap amplitude of every part.
	Score float32
}

// Scene builds heatmaps and vector fields for a set of people.
//
// @example
//
//	scene := NewScene(200, 160).AddPerson(0, 0, 0.9).AddPerson(80, 0, 0.9)
//	heatmaps, pafs := scene.Heatmaps(), scene.VectorFields()
type Scene struct {
	// Width is the field width in pixels.
	Width int
	// Height is the field height in pixels.
	Height int
	// Sigma is the standard deviation of part bumps.
	Sigma float64
	// Radius is the half width of painted limbs.
	Radius float64
	// People are the people in insertion order.
	People []Person
}

// NewScene creates an empty scene with sigma 2 bumps and radius 2 limbs.
func NewScene(width, height int) *Scene {
	return &Scene{Width: width, Height: height, Sigma: 2, Radius: 2}
}

// AddPerson places Layout shifted by (dx, dy). When parts is empty every part
// is drawn, otherwise only the listed ones.
func (s *Scene) AddPerson(dx, dy int, score float32, parts ...skeleton.PartType) *Scene {
	p := Person{Score: score}
	for i, pt := range Layout {
		p.Parts[i] = pt.Add(image.Pt(dx, dy))
		p.Present[i] = len(parts) == 0
	}
	for _, part := range parts {
		p.Present[part] = true
	}
	s.People = append(s.People, p)
	return s
}

// Heatmaps renders skeleton.HeatmapChannels channels. The background channel
// stays zero.
func (s *Scene) Heatmaps() fields.Stack {
	out := fields.NewStack(skeleton.HeatmapChannels, s.Width, s.Height)
	reach := int(math.Ceil(4 * s.Sigma))
	for _, p := range s.People {
		for part, c := range p.Parts {
			if !p.Present[part] {
				continue
			}
			f := out[part]
			for y := c.Y - reach; y <= c.Y+reach; y++ {
				for x := c.X - reach; x <= c.X+reach; x++ {
					if !f.In(x, y) {
						continue
					}
					dx, dy := float64(x-c.X), float64(y-c.Y)
					v := float32(float64(p.Score) * math.Exp(-(dx*dx+dy*dy)/(2*s.Sigma*s.Sigma)))
					if v > f.At(x, y) {
						f.Set(x, y, v)
					}
				}
			}
		}
	}
	return out
}

// VectorFields renders skeleton.VectorFieldChannels channels. Every pixel
// within Radius of a limb segment holds the limb's unit direction.
func (s *Scene) VectorFields() fields.Stack {
	out := fields.NewStack(skeleton.VectorFieldChannels, s.Width, s.Height)
	for _, p := range s.People {
		for _, limb := range skeleton.Limbs {
			if !p.Present[limb.A] || !p.Present[limb.B] {
				continue
			}
			s.Paint(out[limb.ChannelX], out[limb.ChannelY], p.Parts[limb.A], p.Parts[limb.B])
		}
	}
	return out
}

// Paint writes the unit vector from a to b into fx and fy for every pixel
// within Radius of the segment.
func (s *Scene) Paint(fx, fy fields.Field, a, b image.Point) {
	vx, vy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(vx, vy)
	if length == 0 {
		return
	}
	ux, uy := vx/length, vy/length

	r := int(math.Ceil(s.Radius))
	minX, maxX := min(a.X, b.X)-r, max(a.X, b.X)+r
	minY, maxY := min(a.Y, b.Y)-r, max(a.Y, b.Y)+r
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !fx.In(x, y) {
				continue
			}
			px, py := float64(x-a.X), float64(y-a.Y)
			t := math.Max(0, math.Min(length, px*ux+py*uy))
			ex, ey := px-t*ux, py-t*uy
			if ex*ex+ey*ey <= s.Radius*s.Radius {
				fx.Set(x, y, float32(ux))
				fy.Set(x, y, float32(uy))
			}
		}
	}
}
