package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var shellTemplates embed.FS

// NavItem is one node of the sidebar navigation tree. The template renders
// the tree recursively, one nested list per level; at most one node in the
// whole tree is Active.
type NavItem struct {
	Path     string
	Name     string
	Active   bool
	Children []NavItem
}

// NavLink points at an adjacent page in reading order.
type NavLink struct {
	Path string
	Name string
}

// VersionOption is one entry in the version picker.
type VersionOption struct {
	Path    string // the same page under that version
	Display string
	Active  bool
}

// View is everything the page shell needs to produce a full document.
type View struct {
	Title    string
	SiteName string
	BasePath string // canonical manual root, used for the home link
	Versions []VersionOption
	Nav      []NavItem
	Content  template.HTML
	Outline  []Heading
	Prev     *NavLink
	Next     *NavLink
}

// HTMLContent marks a rendered page body as trusted template content.
// Only bytes produced by Renderer.Page belong here.
func HTMLContent(body []byte) template.HTML {
	return template.HTML(body)
}

// Shell wraps rendered page bodies in the full HTML document: header with
// the version picker, ToC sidebar, outline column, and reading-order
// footer links.
type Shell struct {
	tmpl *template.Template
}

// NewShell parses the embedded shell template. A missing embedded asset is
// a programmer error, hence the panic via template.Must.
func NewShell() *Shell {
	return &Shell{
		tmpl: template.Must(template.ParseFS(shellTemplates, "templates/*.tmpl")),
	}
}

// Render writes the complete document for a page view.
func (s *Shell) Render(w io.Writer, view View) error {
	return s.tmpl.ExecuteTemplate(w, "page.html.tmpl", view)
}
