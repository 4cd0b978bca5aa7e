package render

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShell_RendersFullDocument(t *testing.T) {
	view := View{
		Title:    "Variables",
		SiteName: "Product Manual",
		BasePath: "/manual",
		Versions: []VersionOption{
			{Path: "/manual@v2.0/basics/variables", Display: "v2.0"},
			{Path: "/manual@v1.0/basics/variables", Display: "v1.0", Active: true},
		},
		Nav: []NavItem{
			{Path: "/manual@v1.0/introduction", Name: "Introduction"},
			{Path: "/manual@v1.0/basics", Name: "Basics", Children: []NavItem{
				{Path: "/manual@v1.0/basics/variables", Name: "Variables", Active: true},
			}},
		},
		Content: template.HTML("<h1>Variables</h1><p>body</p>"),
		Outline: []Heading{{Level: 2, ID: "declarations", Text: "Declarations"}},
		Prev:    &NavLink{Path: "/manual@v1.0/basics", Name: "Basics"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewShell().Render(&buf, view))
	out := buf.String()

	require.Contains(t, out, "<title>Variables – Product Manual</title>")
	require.Contains(t, out, `<a class="site" href="/manual">Product Manual</a>`)
	require.Contains(t, out, `<option value="/manual@v1.0/basics/variables" selected>v1.0</option>`)
	require.Contains(t, out, `<a href="/manual@v1.0/basics/variables" class="active">Variables</a>`)
	require.Contains(t, out, "<h1>Variables</h1><p>body</p>")
	require.Contains(t, out, `<a href="#declarations">Declarations</a>`)
	require.Contains(t, out, `rel="prev"`)
	require.NotContains(t, out, `rel="next"`)
}

func TestShell_EscapesUntrustedTitle(t *testing.T) {
	var buf bytes.Buffer
	err := NewShell().Render(&buf, View{Title: "<script>alert(1)</script>", SiteName: "Manual"})
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestShell_NestsChildListsPerLevel(t *testing.T) {
	var buf bytes.Buffer
	err := NewShell().Render(&buf, View{
		SiteName: "Manual",
		Nav: []NavItem{
			{Path: "/manual@v1.0/basics", Name: "Basics", Children: []NavItem{
				{Path: "/manual@v1.0/basics/types", Name: "Types", Children: []NavItem{
					{Path: "/manual@v1.0/basics/types/structs", Name: "Structs"},
				}},
			}},
		},
	})
	require.NoError(t, err)
	out := buf.String()

	// Each level of children opens its own list inside the parent item.
	require.Equal(t, 3, strings.Count(out, "<ul>"))
	require.Contains(t, out, ">Basics</a>\n<ul>")
	require.Contains(t, out, ">Types</a>\n<ul>")
}
