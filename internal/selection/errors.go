package selection

import "errors"

// Error kinds reported by the selection core. Callers match them with errors.Is;
// the returned errors wrap one of these with a short detail.
var (
	// ErrUnimplemented is returned when an unconfigured selector or converter is invoked.
	ErrUnimplemented = errors.New("unimplemented")

	// ErrInvalidArgument is returned when the two raw images differ in size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFatal marks a low-level failure such as a pixel buffer that does not
	// match its dimensions.
	ErrFatal = errors.New("fatal")
)
