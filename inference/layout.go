package inference

import (
	"github.com/nvr-ai/go-pose/config"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// shape returns the 4D shape of a single image tensor in the given layout.
func shape(layout config.Layout, channels, height, width int) tensor.Shape {
	if layout == config.LayoutNHWC {
		return tensor.Shape{1, height, width, channels}
	}
	return tensor.Shape{1, channels, height, width}
}

// ChannelsFirst copies data, laid out as a single image tensor in layout,
// into a [1, channels, height, width] tensor.
//
// Arguments:
//   - data: The flat tensor values.
//   - layout: The memory order of data.
//   - channels: Number of channels.
//   - height: Tensor height.
//   - width: Tensor width.
//
// Returns:
//   - *tensor.Dense: A channel-first tensor that owns its data.
//   - error: If the length of data does not match the shape.
func ChannelsFirst(data []float32, layout config.Layout, channels, height, width int) (*tensor.Dense, error) {
	if len(data) != channels*height*width {
		return nil, errors.Errorf("%d values for %d channels of %dx%d", len(data), channels, width, height)
	}
	backing := make([]float32, len(data))
	copy(backing, data)

	if layout != config.LayoutNHWC {
		return tensor.New(tensor.WithShape(1, channels, height, width), tensor.WithBacking(backing)), nil
	}

	t := tensor.New(tensor.WithShape(1, height, width, channels), tensor.WithBacking(backing))
	if err := t.T(0, 3, 1, 2); err != nil {
		return nil, errors.Wrap(err, "transpose to channels first")
	}
	if err := t.Transpose(); err != nil {
		return nil, errors.Wrap(err, "materialize transpose")
	}
	return t, nil
}
