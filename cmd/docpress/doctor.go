package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/assets"
	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/convert"
	"github.com/alnah/go-docpress/internal/hints"
	"github.com/alnah/go-docpress/internal/render"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Config   configInfo  `json:"config"`
	Fonts    fontsInfo   `json:"fonts"`
	Office   officeInfo  `json:"office"`
	Browser  browserInfo `json:"browser"`
	Output   outputInfo  `json:"output"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

type configInfo struct {
	Loaded bool     `json:"loaded"`
	Roots  []string `json:"roots,omitempty"`
}

type fontsInfo struct {
	Found    bool     `json:"found"`
	Searched []string `json:"searched,omitempty"`
}

type officeInfo struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

type browserInfo struct {
	Enabled bool   `json:"enabled"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
}

type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
	CI        bool   `json:"ci"`
	Workers   int    `json:"suggested_workers"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check fonts, converters and output directories",
		Args:  cobra.NoArgs,
		// Config errors are reported, not fatal.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup(false)
		},
		RunE: func(*cobra.Command, []string) error {
			result := runDoctor(a.cfg, a.cfgErr)
			if jsonOutput {
				enc := json.NewEncoder(a.env.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(result)
			} else {
				printDoctorResult(a.env.Stdout, result)
			}
			if result.Status == statusErrors {
				return fmt.Errorf("doctor found %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks. A nil cfg with cfgErr set
// reports the config error and checks the rest against defaults.
func runDoctor(cfg *config.Config, cfgErr error) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Container: hints.IsInContainer(),
			Workers:   docpress.ResolvePoolSize(0),
		},
	}

	if cfgErr != nil || cfg == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("config: %v", cfgErr))
		cfg = config.DefaultConfig()
	} else {
		result.Config.Loaded = true
	}
	for _, r := range cfg.Sources.Roots {
		result.Config.Roots = append(result.Config.Roots, r.Path)
		if _, err := os.Stat(r.Path); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("source root %s: %v", r.Path, err))
		}
	}

	checkFonts(result, cfg)
	checkOffice(result, cfg)
	checkBrowser(result, cfg)
	if result.Config.Loaded {
		checkOutput(result, cfg)
	}
	checkCI(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

func checkFonts(result *doctorResult, cfg *config.Config) {
	loader, err := assets.NewSearchLoader(append([]string{cfg.Fonts.Dir}, assets.DefaultFontDirs...)...)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fonts: %v", err))
		return
	}
	result.Fonts.Searched = loader.Dirs()
	_, err = render.LoadFonts(loader, render.FontNames{
		Heading:     cfg.Fonts.HeadingRegular,
		HeadingBold: cfg.Fonts.HeadingBold,
		Body:        cfg.Fonts.BodyRegular,
		BodyBold:    cfg.Fonts.BodyBold,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fonts: %v", err))
		return
	}
	result.Fonts.Found = true
}

// checkOffice warns only: without soffice, spreadsheets and decks still
// get text renders or placeholders.
func checkOffice(result *doctorResult, cfg *config.Config) {
	if bin := convert.FindOffice(cfg.Converters.Soffice); bin != "" {
		result.Office = officeInfo{Found: true, Path: bin}
		return
	}
	result.Warnings = append(result.Warnings,
		"LibreOffice not found: spreadsheets and slide decks fall back to text or placeholders")
}

func checkBrowser(result *doctorResult, cfg *config.Config) {
	result.Browser.Enabled = cfg.Generation.Webpage
	if !cfg.Generation.Webpage {
		return
	}

	bin := cfg.Converters.Browser
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", bin))
		return
	}
	result.Browser.Found = true
	result.Browser.Path = bin
}

func checkOutput(result *doctorResult, cfg *config.Config) {
	dir := cfg.Output.Dir
	result.Output.Dir = dir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("output directory %s: %v%s", dir, err, hints.ForOutputDirectory()))
		return
	}
	probe := filepath.Join(dir, ".docpress-doctor")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("output directory %s not writable: %v%s", dir, err, hints.ForOutputDirectory()))
		return
	}
	_ = os.Remove(probe)
	result.Output.Writable = true
}

func checkCI(result *doctorResult) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
	if result.Browser.Enabled && (result.Env.CI || result.Env.Container) && os.Getenv("CI") != "true" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but CI=true is not set; Chrome will keep its sandbox")
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docpress doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Loaded {
		fmt.Fprintln(w, "  [OK] Loaded")
	} else {
		fmt.Fprintln(w, "  [ERROR] Invalid (defaults used for the checks below)")
	}
	for _, root := range r.Config.Roots {
		fmt.Fprintf(w, "  [OK] Root: %s\n", root)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Fonts")
	if r.Fonts.Found {
		fmt.Fprintln(w, "  [OK] All four faces found")
	} else {
		fmt.Fprintln(w, "  [ERROR] Missing")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Converters")
	if r.Office.Found {
		fmt.Fprintf(w, "  [OK] LibreOffice: %s\n", r.Office.Path)
	} else {
		fmt.Fprintln(w, "  [WARN] LibreOffice: not found")
	}
	switch {
	case !r.Browser.Enabled:
		fmt.Fprintln(w, "  [OK] Chrome: disabled")
	case r.Browser.Found:
		fmt.Fprintf(w, "  [OK] Chrome: %s\n", r.Browser.Path)
	default:
		fmt.Fprintln(w, "  [ERROR] Chrome: not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	switch {
	case r.Output.Dir == "":
		fmt.Fprintln(w, "  [SKIP] needs a valid config")
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Suggested workers: %d\n", r.Env.Workers)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
