// Package toc models the per-version manual table of contents: an ordered
// tree of slugs and display names, its flattened navigation view, and the
// redirect index for moved pages.
//
// Declaration order is meaningful everywhere in this package. The ToC
// document's key order is display and navigation order, and the flattened
// page list preserves it exactly (depth-first, pre-order).
package toc

import (
	"strings"

	"git.home.luguber.info/inful/docserve/internal/foundation"
)

// Entry is one node of the table of contents. String-form document entries
// carry only Slug and Name; object-form entries may add Aliases and Children.
type Entry struct {
	Slug     string
	Name     string
	Aliases  []string
	Children []Entry
}

// Tree is the ordered table of contents for one manual version.
type Tree struct {
	Entries []Entry
}

// Count returns the total node count (leaves and internal nodes).
func (t Tree) Count() int {
	return countEntries(t.Entries)
}

func countEntries(entries []Entry) int {
	n := len(entries)
	for _, e := range entries {
		n += countEntries(e.Children)
	}
	return n
}

// PageEntry is one flattened navigation target. Path carries the version
// prefix; Name is the display name.
type PageEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Flat is the flattened view of a Tree: the ordered page list and the
// redirect index from legacy slugs to current versioned paths.
type Flat struct {
	Pages     []PageEntry
	Redirects map[string]string
}

// ActiveIndex locates the requested slug in the page list. Entry paths are
// versioned and the request slug is not, so matching is on the path suffix.
// Returns -1 when the slug is not present.
func (f Flat) ActiveIndex(slug string) int {
	needle := "/" + strings.Trim(slug, "/")
	for i, p := range f.Pages {
		if strings.HasSuffix(p.Path, needle) {
			return i
		}
	}
	return -1
}

// Neighbors returns the previous and next page entries around index i.
// Both are None at the respective ends; there is no wraparound.
func (f Flat) Neighbors(i int) (prev, next foundation.Option[PageEntry]) {
	prev, next = foundation.None[PageEntry](), foundation.None[PageEntry]()
	if i < 0 || i >= len(f.Pages) {
		return prev, next
	}
	if i > 0 {
		prev = foundation.Some(f.Pages[i-1])
	}
	if i+1 < len(f.Pages) {
		next = foundation.Some(f.Pages[i+1])
	}
	return prev, next
}

// Redirect looks up a requested slug in the redirect index.
func (f Flat) Redirect(slug string) (string, bool) {
	target, ok := f.Redirects[strings.Trim(slug, "/")]
	return target, ok
}
