// Package render - Drawing of assembled poses onto images.
package render

import (
	"image"
	"image/color"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/pose"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Options controls what Pose draws.
type Options struct {
	// KeypointThreshold is the score a keypoint must exceed to be drawn.
	KeypointThreshold float64
	// Radius of keypoint circles in pixels.
	Radius int
	// Thickness of limb lines in pixels.
	Thickness int
	// Alpha is the weight of the original image in the final blend; 1 leaves
	// the image untouched and 0 shows the drawing alone.
	Alpha float64
	// Limbs enables lines between connected keypoints.
	Limbs bool
	// PartColors colors keypoints by body region instead of plain green.
	PartColors bool
}

// FromConfig converts the render configuration section.
func FromConfig(cfg config.RenderConfig) Options {
	return Options{
		KeypointThreshold: cfg.KeypointThreshold,
		Radius:            cfg.Radius,
		Thickness:         cfg.Thickness,
		Alpha:             cfg.Alpha,
		Limbs:             cfg.Limbs,
		PartColors:        cfg.PartColors,
	}
}

type segment struct {
	from, to image.Point
	color    color.RGBA
}

type dot struct {
	center image.Point
	color  color.RGBA
}

// plan lists the lines and circles to draw for people.
func plan(people []pose.Person, opts Options) ([]segment, []dot) {
	var segments []segment
	var dots []dot
	for _, p := range people {
		if opts.Limbs {
			for _, limb := range skeleton.Limbs[:skeleton.BodyLimbCount] {
				a, okA := p.Keypoint(limb.A)
				b, okB := p.Keypoint(limb.B)
				if !okA || !okB {
					continue
				}
				segments = append(segments, segment{from: point(a), to: point(b), color: limbColor(limb)})
			}
		}
		for _, kp := range p.Keypoints {
			if float64(kp.Score) <= opts.KeypointThreshold {
				continue
			}
			c := Green
			if opts.PartColors {
				c = partColors[kp.Part]
			}
			dots = append(dots, dot{center: point(kp), color: c})
		}
	}
	return segments, dots
}

func point(kp pose.Keypoint) image.Point {
	return image.Pt(int(kp.X), int(kp.Y))
}

// Pose draws people onto img in place. Limbs are drawn first so keypoint
// circles stay on top, then the drawing is blended with the original image.
//
// Arguments:
//   - img: The BGR image to draw on. Coordinates are in its pixel space.
//   - people: The people to draw.
//   - opts: Drawing options.
//
// Returns:
//   - error: If img is empty or Alpha is outside [0, 1].
//
// @example
//
//	img := gocv.IMRead("people.jpg", gocv.IMReadColor)
//	defer img.Close()
//	err := render.Pose(&img, result.People(), render.FromConfig(cfg.Render))
func Pose(img *gocv.Mat, people []pose.Person, opts Options) error {
	if img == nil || img.Empty() {
		return errors.New("empty image")
	}
	if opts.Alpha < 0 || opts.Alpha > 1 {
		return errors.Errorf("alpha %v is outside [0, 1]", opts.Alpha)
	}

	segments, dots := plan(people, opts)
	if len(segments) == 0 && len(dots) == 0 {
		return nil
	}

	overlay := img.Clone()
	defer overlay.Close()

	for _, s := range segments {
		gocv.Line(&overlay, s.from, s.to, s.color, opts.Thickness)
	}
	for _, d := range dots {
		gocv.Circle(&overlay, d.center, opts.Radius, d.color, -1)
	}

	gocv.AddWeighted(overlay, 1-opts.Alpha, *img, opts.Alpha, 0, img)
	return nil
}
