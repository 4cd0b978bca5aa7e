package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func renderBody(t *testing.T, src string) string {
	t.Helper()
	page, err := NewRenderer().Page([]byte(src), Vars{}, "t")
	require.NoError(t, err)
	return string(page.Body)
}

func TestLinkRewrite_StripsMdFromRelativeLinks(t *testing.T) {
	out := renderBody(t, "See [Variables](variables.md).")
	require.Contains(t, out, `href="variables"`)
	require.NotContains(t, out, "variables.md")
}

func TestLinkRewrite_NestedRelativePath(t *testing.T) {
	out := renderBody(t, "See [Variables](basics/variables.md).")
	require.Contains(t, out, `href="basics/variables"`)
}

func TestLinkRewrite_KeepsFragment(t *testing.T) {
	out := renderBody(t, "See [Scope](basics.md#scope).")
	require.Contains(t, out, `href="basics#scope"`)
}

func TestLinkRewrite_LeavesExternalLinks(t *testing.T) {
	out := renderBody(t, "See [upstream](https://example.com/readme.md).")
	require.Contains(t, out, `href="https://example.com/readme.md"`)
}

func TestLinkRewrite_LeavesAnchorsAndNonMd(t *testing.T) {
	out := renderBody(t, "Jump to [scope](#scope) or [the PDF](guide.pdf).")
	require.Contains(t, out, `href="#scope"`)
	require.Contains(t, out, `href="guide.pdf"`)
}

func TestLinkRewrite_LeavesImages(t *testing.T) {
	out := renderBody(t, "![diagram](diagram.md.png)")
	require.Contains(t, out, `src="diagram.md.png"`)
}
