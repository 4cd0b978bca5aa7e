package render

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkRewriter strips the .md suffix from relative link destinations so
// cross-references between manual sources resolve to routed page paths.
// External links, anchors, and images are left alone.
type linkRewriter struct{}

func (linkRewriter) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := n.(*gmast.Link); ok {
			link.Destination = rewriteDestination(link.Destination)
		}
		return gmast.WalkContinue, nil
	})
}

func rewriteDestination(dest []byte) []byte {
	s := string(dest)
	if s == "" || strings.HasPrefix(s, "#") || isExternal(s) {
		return dest
	}

	base, fragment, hasFragment := strings.Cut(s, "#")
	if !strings.HasSuffix(base, ".md") {
		return dest
	}
	base = strings.TrimSuffix(base, ".md")
	if hasFragment {
		return []byte(base + "#" + fragment)
	}
	return []byte(base)
}

func isExternal(dest string) bool {
	return strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "//") ||
		strings.HasPrefix(dest, "mailto:")
}
