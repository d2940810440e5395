// Package yamlutil wraps YAML decoding for configuration files and document
// front matter, isolating the external dependency behind a small API.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// decodeOptions configures a single decode call.
type decodeOptions struct {
	strict bool
}

// DecodeOption tweaks decoding.
type DecodeOption func(*decodeOptions)

// Strict rejects keys that have no destination field.
// Configuration files use it; front matter does not, since unknown keys
// are dropped at the parse boundary.
func Strict() DecodeOption {
	return func(o *decodeOptions) { o.strict = true }
}

// Unmarshal decodes data into v. Errors carry the offending line and column.
func Unmarshal(data []byte, v any, opts ...DecodeOption) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var yamlOpts []yaml.DecodeOption
	if o.strict {
		yamlOpts = append(yamlOpts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, yamlOpts...); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	return nil
}

// UnmarshalStrict is Unmarshal with Strict.
func UnmarshalStrict(data []byte, v any) error {
	return Unmarshal(data, v, Strict())
}

// Marshal encodes v as block-style YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
