package pipeline

import "github.com/pkg/errors"

var (
	// ErrStepMustBeSet is reported when a nil step is added to a pipeline.
	ErrStepMustBeSet = errors.New("step must be set")
	// ErrForEachDomain is reported when a foreach step is built with
	// neither an items key nor an iteration count.
	ErrForEachDomain = errors.New("either an items key or an iteration count must be provided")
	// ErrItemsNotIterable is reported when the configured items key holds a
	// value that is not a slice or an array.
	ErrItemsNotIterable = errors.New("items value is not a slice or array")
)
