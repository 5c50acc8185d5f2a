// Package fields - Dense float32 sample grids for network heatmaps and part
// affinity fields, with conversion from tensors and bicubic resampling.
package fields

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

var (
	// ErrShapeMismatch is returned when a tensor does not have the expected
	// channel layout.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	// ErrInvalidSize is returned for non-positive field dimensions.
	ErrInvalidSize = errors.New("invalid field size")
	// ErrUnsupportedDtype is returned for tensors that are not float32.
	ErrUnsupportedDtype = errors.New("unsupported tensor dtype")
)

// Field is a row-major grid of scalar samples indexed [y][x].
type Field struct {
	// Width is the number of columns.
	Width int
	// Height is the number of rows.
	Height int
	// Data holds Width*Height samples, row by row.
	Data []float32
}

// New allocates a zeroed field.
func New(width, height int) Field {
	return Field{Width: width, Height: height, Data: make([]float32, width*height)}
}

// At returns the sample at column x, row y.
func (f Field) At(x, y int) float32 {
	return f.Data[y*f.Width+x]
}

// Set writes the sample at column x, row y.
func (f Field) Set(x, y int, v float32) {
	f.Data[y*f.Width+x] = v
}

// In reports whether (x, y) lies inside the grid.
func (f Field) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// Stack is an ordered set of equally sized channels.
type Stack []Field

// NewStack allocates channels zeroed fields of the given size.
func NewStack(channels, width, height int) Stack {
	s := make(Stack, channels)
	for i := range s {
		s[i] = New(width, height)
	}
	return s
}

// Size returns the width and height shared by the channels. An empty stack
// reports 0x0.
func (s Stack) Size() (int, int) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].Width, s[0].Height
}

// Validate checks that the stack has the expected channel count and that every
// channel is a well formed grid of the same positive size.
func (s Stack) Validate(channels int) error {
	if len(s) != channels {
		return errors.Wrapf(ErrShapeMismatch, "expected %d channels, got %d", channels, len(s))
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return errors.Wrapf(ErrInvalidSize, "channel size %dx%d", w, h)
	}
	for i, f := range s {
		if f.Width != w || f.Height != h {
			return errors.Wrapf(ErrShapeMismatch, "channel %d is %dx%d, expected %dx%d", i, f.Width, f.Height, w, h)
		}
		if len(f.Data) != w*h {
			return errors.Wrapf(ErrShapeMismatch, "channel %d holds %d samples, expected %d", i, len(f.Data), w*h)
		}
	}
	return nil
}

// materializer is implemented by tensors that may be lazily transposed views.
type materializer interface {
	IsMaterializable() bool
	Materialize() tensor.Tensor
}

// FromTensor splits a channel-first float32 tensor into a Stack. The tensor
// must have shape [channels, H, W] or [1, channels, H, W].
//
// Arguments:
//   - t: The tensor to split. Lazily transposed views are materialized first.
//   - channels: The expected number of channels.
//
// Returns:
//   - Stack: One field per channel, copied out of the tensor.
//   - error: ErrShapeMismatch, ErrInvalidSize or ErrUnsupportedDtype wrapped
//     with the offending shape.
func FromTensor(t tensor.Tensor, channels int) (Stack, error) {
	if t == nil {
		return nil, errors.Wrap(ErrShapeMismatch, "nil tensor")
	}
	if m, ok := t.(materializer); ok && m.IsMaterializable() {
		t = m.Materialize()
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrUnsupportedDtype, "got %v, expected float32", t.Dtype())
	}

	shape := t.Shape()
	dims := []int(shape)
	if len(dims) == 4 {
		if dims[0] != 1 {
			return nil, errors.Wrapf(ErrShapeMismatch, "batch size %d in shape %v, expected 1", dims[0], shape)
		}
		dims = dims[1:]
	}
	if len(dims) != 3 {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v is not [C,H,W] or [1,C,H,W]", shape)
	}
	if dims[0] != channels {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v has %d channels, expected %d", shape, dims[0], channels)
	}
	h, w := dims[1], dims[2]
	if h <= 0 || w <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "shape %v", shape)
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedDtype, "backing data is %T", t.Data())
	}
	plane := w * h
	if len(data) != channels*plane {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v backed by %d values", shape, len(data))
	}

	s := make(Stack, channels)
	for c := range s {
		f := New(w, h)
		copy(f.Data, data[c*plane:(c+1)*plane])
		s[c] = f
	}
	return s, nil
}

// ToTensor packs the stack into a [channels, H, W] float32 tensor.
func (s Stack) ToTensor() *tensor.Dense {
	w, h := s.Size()
	backing := make([]float32, 0, len(s)*w*h)
	for _, f := range s {
		backing = append(backing, f.Data...)
	}
	return tensor.New(tensor.WithShape(len(s), h, w), tensor.WithBacking(backing))
}

// String describes the field size.
func (f Field) String() string {
	return fmt.Sprintf("field(%dx%d)", f.Width, f.Height)
}
