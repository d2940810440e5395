package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/render"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneral},
		{"hard failures", fmt.Errorf("%w: 2 hard failure(s)", errHardFailures), ExitGeneral},
		{"canceled", fmt.Errorf("interrupted: %w", context.Canceled), ExitGeneral},
		{"usage", fmt.Errorf("%w: bad flag", errUsage), ExitUsage},
		{"config not found", fmt.Errorf("%w: docpress.yaml", config.ErrConfigNotFound), ExitUsage},
		{"config parse", fmt.Errorf("%w: line 3", config.ErrConfigParse), ExitUsage},
		{"invalid value wrapped in ErrConfig", fmt.Errorf("%w: %w", docpress.ErrConfig, config.ErrInvalidValue), ExitUsage},
		{"bad format", fmt.Errorf("--formats: %w", model.ErrInvalidFormat), ExitUsage},
		{"missing fonts", fmt.Errorf("%w: %w", docpress.ErrConfig, render.ErrFontMissing), ExitConfig},
		{"mandatory", docpress.ErrMissingHandler, ExitConfig},
		{"not found", fmt.Errorf("open: %w", os.ErrNotExist), ExitIO},
		{"permission", fmt.Errorf("write: %w", os.ErrPermission), ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyCobraError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg       string
		wantUsage bool
	}{
		{`unknown command "publish" for "docpress"`, true},
		{"unknown flag: --colour", true},
		{"unknown shorthand flag: 'x' in -x", true},
		{"accepts 1 arg(s), received 2", true},
		{"scan failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			t.Parallel()
			got := classifyCobraError(errors.New(tt.msg))
			if errors.Is(got, errUsage) != tt.wantUsage {
				t.Errorf("classifyCobraError(%q) usage = %v, want %v", tt.msg, !tt.wantUsage, tt.wantUsage)
			}
		})
	}
}
