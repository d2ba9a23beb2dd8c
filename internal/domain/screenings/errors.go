package screenings

import "errors"

// ErrNoInput indicates the caller supplied no text, no audio and no image.
// This is a caller-contract violation, checked before any analyzer runs.
var ErrNoInput = errors.New("no input provided: supply text, audio or image")
