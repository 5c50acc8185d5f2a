package pose

import (
	"github.com/nvr-ai/go-pose/fields"
	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when an input does not have the expected
	// channel count or the heatmaps and vector fields differ in size.
	ErrShapeMismatch = fields.ErrShapeMismatch
	// ErrInvalidResolution is returned for non-positive field or target sizes.
	ErrInvalidResolution = fields.ErrInvalidSize
	// ErrUnsupportedDtype is returned for tensors that are not float32.
	ErrUnsupportedDtype = fields.ErrUnsupportedDtype
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid pose parameters")
)
