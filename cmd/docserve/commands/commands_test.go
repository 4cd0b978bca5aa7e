package commands

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

const cliTestToc = `introduction:
  name: Introduction
  aliases: [getting-started]
basics:
  name: Basics
  children:
    variables: Variables
`

// newManualOrigin serves a fixed two-version manual over HTTP.
func newManualOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/index.yml"):
			_, _ = w.Write([]byte(cliTestToc))
		case strings.HasSuffix(r.URL.Path, "/introduction.md"):
			_, _ = w.Write([]byte("# Welcome\n\nStart here.\n"))
		case strings.HasSuffix(r.URL.Path, "/basics/variables.md"):
			_, _ = w.Write([]byte("# Variables\n\nNames bind values.\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCLIConfig(t *testing.T, originURL string) string {
	t.Helper()
	content := fmt.Sprintf(`version: "1.0"
server:
  http:
    docs_port: 8080
    admin_port: 8081
  base_path: /manual
source:
  kind: http
  http:
    url_template: "%s/{version}/{path}"
  toc_path: index.yml
versions:
  list:
    - name: v2.0
    - name: v1.0
`, originURL)
	path := filepath.Join(t.TempDir(), "docserve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// captureStdout redirects os.Stdout around fn so command output can be
// asserted on.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	os.Stdout = old
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

func TestCLI_GrammarParses(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"serve"}, "serve"},
		{[]string{"check", "--fetch"}, "check"},
		{[]string{"pages", "--version", "v1.0", "--redirects"}, "pages"},
		{[]string{"render", "--path", "introduction"}, "render"},
		{[]string{"init", "--force"}, "init"},
		{[]string{"version"}, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Name("docserve"))
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			require.Equal(t, tt.want, ctx.Command())
		})
	}
}

func TestCLI_RenderRequiresPath(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("docserve"))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"render"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "--path")
}

func TestCheck_ReportsValidConfig(t *testing.T) {
	path := writeCLIConfig(t, "https://git.example.com/product/manual/raw")

	cmd := &CheckCmd{}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "OK")
	require.Contains(t, out, "versions: 2 (default v2.0)")
}

func TestCheck_MissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cmd := &CheckCmd{}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Contains(t, out, "INVALID")
}

func TestCheckFetch_WalksEveryVersion(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &CheckCmd{Fetch: true}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "v2.0: 3 pages, 1 redirects")
	require.Contains(t, out, "v1.0: 3 pages, 1 redirects")
}

func TestCheckFetch_FailsWhenTocUnreachable(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)
	origin.Close()

	cmd := &CheckCmd{Fetch: true}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.Error(t, err)
	require.Contains(t, out, "FAILED")
}

func TestPages_PrintsOrderedList(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &PagesCmd{Version: "v1.0"}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)

	intro := strings.Index(out, "/manual@v1.0/introduction\tIntroduction")
	basics := strings.Index(out, "/manual@v1.0/basics\tBasics")
	vars := strings.Index(out, "/manual@v1.0/basics/variables\tVariables")
	require.GreaterOrEqual(t, intro, 0)
	require.Greater(t, basics, intro)
	require.Greater(t, vars, basics)

	// No redirects without the flag.
	require.NotContains(t, out, "getting-started")
}

func TestPages_DefaultsToDefaultVersion(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &PagesCmd{}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "/manual@v2.0/introduction")
}

func TestPages_RedirectsFlag(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &PagesCmd{Version: "v1.0", Redirects: true}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "getting-started\t-> /manual@v1.0/introduction")
}

func TestPages_UnknownVersion(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &PagesCmd{Version: "v9.9"}
	_, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestRender_WritesPageHTML(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &RenderCmd{Version: "v1.0", Path: "basics/variables"}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "<!DOCTYPE html>")
	require.Contains(t, out, "Names bind values.")
}

func TestRender_FollowsAlias(t *testing.T) {
	origin := newManualOrigin(t)
	path := writeCLIConfig(t, origin.URL)

	cmd := &RenderCmd{Version: "v1.0", Path: "getting-started"}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "Start here.")
}

func TestInit_WritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docserve.yaml")

	cmd := &InitCmd{}
	_, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.NoError(t, err)

	_, err = config.Load(path)
	require.NoError(t, err)

	_, err = captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{Config: path})
	})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	cmd := &VersionCmd{}
	out, err := captureStdout(t, func() error {
		return cmd.Run(&Global{}, &CLI{})
	})
	require.NoError(t, err)
	require.Contains(t, out, "docserve")
}
