// Package render turns fetched markdown page sources into HTML: front
// matter handling, version token expansion, markdown conversion with
// syntax highlighting, and the heading outline for the in-page nav.
package render

import (
	"bytes"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
)

// Vars carries the per-version values substituted into page sources.
type Vars struct {
	// Version is the manual version token, e.g. "v1.0".
	Version string
	// StdVersion is the standard-library docs version the manual pairs with.
	StdVersion string
}

// Heading is one outline entry extracted from the rendered page.
type Heading struct {
	Level int    `json:"level"` // 2 or 3
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Page is a fully rendered manual page body.
type Page struct {
	// Title is the front matter override, else the first h1, else the
	// fallback passed by the caller (normally the ToC display name).
	Title string
	// Body is the rendered markdown, without the surrounding shell.
	Body []byte
	// Outline lists the h2/h3 headings for the in-page navigation.
	Outline []Heading
}

// Renderer converts markdown page sources to HTML. A Renderer is safe for
// concurrent use; goldmark instances are stateless after construction.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds the markdown pipeline: GitHub-flavored markdown with
// typographic replacements, stable heading anchors, class-based chroma
// highlighting, and internal .md links rewritten to routed paths. Raw HTML
// passes through; manual sources are first-party content.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				highlighting.NewHighlighting(
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(&linkRewriter{}, 100),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Page renders one markdown source. fallbackTitle is used when neither the
// front matter nor the document provides a title.
func (r *Renderer) Page(source []byte, vars Vars, fallbackTitle string) (Page, error) {
	doc, err := frontmatter.Split(source)
	if err != nil {
		return Page{}, errors.WrapError(err, errors.CategoryRender, "splitting front matter").Build()
	}

	body := ExpandTokens(doc.Body, vars)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return Page{}, errors.WrapError(err, errors.CategoryRender, "converting markdown").Build()
	}

	outline, h1 := extractOutline(buf.Bytes())

	title := fallbackTitle
	if h1 != "" {
		title = h1
	}
	if override, ok := doc.Title(); ok {
		title = override
	}
	title = strings.TrimSpace(title)

	return Page{Title: title, Body: buf.Bytes(), Outline: outline}, nil
}
