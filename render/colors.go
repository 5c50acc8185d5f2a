package render

import (
	"image/color"

	"github.com/nvr-ai/go-pose/skeleton"
)

var (
	// Green is the keypoint color when per part colors are disabled.
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}

	palette = []color.RGBA{
		{R: 255, G: 128, B: 0, A: 255},
		{R: 255, G: 51, B: 255, A: 255},
		{R: 51, G: 153, B: 255, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
	}

	// partColors colors keypoints by region: head, right arm and leg, left
	// arm and leg.
	partColors = [skeleton.PartCount]color.RGBA{
		skeleton.Nose:          palette[3],
		skeleton.Neck:          palette[3],
		skeleton.RightShoulder: palette[0],
		skeleton.RightElbow:    palette[0],
		skeleton.RightWrist:    palette[0],
		skeleton.LeftShoulder:  palette[2],
		skeleton.LeftElbow:     palette[2],
		skeleton.LeftWrist:     palette[2],
		skeleton.RightHip:      palette[1],
		skeleton.RightKnee:     palette[1],
		skeleton.RightAnkle:    palette[1],
		skeleton.LeftHip:       palette[2],
		skeleton.LeftKnee:      palette[2],
		skeleton.LeftAnkle:     palette[2],
		skeleton.RightEye:      palette[3],
		skeleton.LeftEye:       palette[3],
		skeleton.RightEar:      palette[3],
		skeleton.LeftEar:       palette[3],
	}
)

// limbColor takes the color of the limb's end part.
func limbColor(l skeleton.Limb) color.RGBA {
	return partColors[l.B]
}
