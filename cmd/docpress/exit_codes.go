package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/model"
)

// Exit codes for the docpress CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // No hard task failures
	ExitGeneral = 1 // Hard task failures or unexpected error
	ExitUsage   = 2 // Invalid flags or unparsable config
	ExitIO      = 3 // File not found, permission denied
	ExitConfig  = 4 // Missing fonts, mandatory document without handler
)

// Sentinel errors raised by the CLI itself.
var (
	errUsage        = errors.New("invalid usage")
	errHardFailures = errors.New("tasks failed")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage and parse errors (exit 2), checked first because config
	// validation failures are also wrapped in docpress.ErrConfig.
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, model.ErrInvalidTier) ||
		errors.Is(err, model.ErrInvalidFormat) ||
		errors.Is(err, model.ErrInvalidQuality) {
		return ExitUsage
	}

	// Configuration errors (exit 4)
	if errors.Is(err, docpress.ErrConfig) {
		return ExitConfig
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}

// classifyCobraError marks cobra's own argument errors as usage errors.
// Flag errors are already wrapped by the flag error func.
func classifyCobraError(err error) error {
	if errors.Is(err, errUsage) {
		return err
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "accepts ") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return err
}
