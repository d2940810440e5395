package docpress

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation runs.
var (
	// ErrConfig marks configuration problems that end a run immediately:
	// invalid settings, missing fonts, unroutable mandatory documents.
	ErrConfig = errors.New("configuration error")

	// ErrMissingHandler is returned when a mandatory document would only
	// ever receive a placeholder.
	ErrMissingHandler = fmt.Errorf("%w: mandatory document has no handler", ErrConfig)

	// ErrNoRoute means no route matched a task.
	ErrNoRoute = errors.New("no route matches source")

	// ErrAllRoutesFailed means every matching route failed.
	ErrAllRoutesFailed = errors.New("all routes failed")

	// ErrInvalidOutput means a handler returned without writing a PDF.
	ErrInvalidOutput = errors.New("handler output is not a PDF")
)
