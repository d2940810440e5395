// Package hints builds the "hint:" suffixes appended to user-facing errors.
// Every hint renders as "\n  hint: <text>" so the CLI can print it under
// the error line.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-docpress/internal/fileutil"
)

const prefix = "\n  hint: "

// IsInContainer reports whether the process runs under Docker.
// It is a variable so tests can pin it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI providers we know about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

func inCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect explains how to get Chrome running for webpage
// conversion. It returns "" when there is nothing left to suggest.
func ForBrowserConnect() string {
	var parts []string
	// Only CI=true (or an explicit binary) turns the sandbox off.
	if (inCI() || IsInContainer()) && os.Getenv("CI") != "true" {
		parts = append(parts, "set CI=true to run Chrome without its sandbox in Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN or converters.browser to use an installed Chrome")
	}
	return join(parts)
}

// ForFontsMissing names the font directories that were tried.
func ForFontsMissing(dirs []string) string {
	var b strings.Builder
	b.WriteString("set fonts.dir or DOCPRESS_FONTS_DIR to a directory holding the TTF files")
	if len(dirs) > 0 {
		b.WriteString(" (searched: ")
		b.WriteString(strings.Join(dirs, ", "))
		b.WriteString(")")
	}
	return render(b.String())
}

// ForOfficeMissing is shown when no soffice binary could be found.
func ForOfficeMissing() string {
	return render("install LibreOffice or set SOFFICE_PATH / converters.soffice")
}

// ForTimeout is shown when soffice outlives its deadline.
func ForTimeout() string {
	return render("large decks may need a longer converters.officeTimeout")
}

// ForConfigNotFound suggests --config, plus the user config path when one
// of searched lives under ~/.config/go-docpress.
func ForConfigNotFound(searched []string) string {
	text := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(filepathSlash(p), ".config/go-docpress") {
			return render(text + " or create " + p)
		}
	}
	return render(text)
}

// ForOutputDirectory is shown when the output tree cannot be written.
func ForOutputDirectory() string {
	return render("check the parent of output.dir exists and is writable, or pass --output")
}

// ForMandatory is shown when a mandatory document has no real handler.
func ForMandatory() string {
	return render("add a route for it or remove it from generation.mandatory")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func render(text string) string {
	if text == "" {
		return ""
	}
	return prefix + text
}

func join(parts []string) string {
	return render(strings.Join(parts, "; "))
}
