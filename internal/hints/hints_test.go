package hints

// ForBrowserConnect tests cannot run in parallel: they use t.Setenv and
// swap the package-level IsInContainer.

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_BROWSER_BIN"} {
		t.Setenv(k, "")
	}
}

func TestForBrowserConnect_InGitHubActions(t *testing.T) {
	withContainer(t, false)
	clearCI(t)
	t.Setenv("GITHUB_ACTIONS", "true")

	hint := ForBrowserConnect()

	assert.True(t, strings.HasPrefix(hint, "\n  hint: "))
	assert.Contains(t, hint, "CI=true")
	assert.Contains(t, hint, "ROD_BROWSER_BIN")
}

func TestForBrowserConnect_InDocker(t *testing.T) {
	withContainer(t, true)
	clearCI(t)

	assert.Contains(t, ForBrowserConnect(), "CI=true")
}

func TestForBrowserConnect_SandboxAlreadyDisabled(t *testing.T) {
	withContainer(t, true)
	clearCI(t)
	t.Setenv("CI", "true")

	assert.NotContains(t, ForBrowserConnect(), "CI=true")
}

func TestForBrowserConnect_NothingToSuggest(t *testing.T) {
	withContainer(t, false)
	clearCI(t)
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	assert.Empty(t, ForBrowserConnect())
}

func TestForFontsMissing(t *testing.T) {
	t.Parallel()

	assert.Contains(t, ForFontsMissing([]string{"fonts", "assets/fonts"}), "searched: fonts, assets/fonts")
	assert.NotContains(t, ForFontsMissing(nil), "searched")
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
		notWant  string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"site.yaml", "/home/u/.config/go-docpress/site.yaml"},
			want:     "or create /home/u/.config/go-docpress/site.yaml",
		},
		{
			name:     "no user path",
			searched: []string{"site.yaml"},
			want:     "use --config",
			notWant:  "or create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ForConfigNotFound(tt.searched)
			assert.Contains(t, got, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, got, tt.notWant)
			}
		})
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	for _, h := range []string{ForOfficeMissing(), ForTimeout(), ForOutputDirectory(), ForMandatory()} {
		assert.True(t, strings.HasPrefix(h, "\n  hint: "), h)
	}
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, join(nil))
	assert.Empty(t, render(""))
}

func TestForConfigNotFound_WindowsPath(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{`C:\Users\u\.config\go-docpress\site.yaml`})
	assert.Contains(t, got, "or create")
}
