package toc

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Flatten walks the tree depth-first in declared order and produces the
// navigation page list plus the redirect index. Every node becomes exactly
// one page entry whose path is prefix + "/" + the slugs from root to the
// node joined with "/". Aliases become redirect keys pointing at the
// aliased node's versioned path.
//
// Flattening the same tree with the same prefix always yields identical
// output; nothing here depends on map iteration order.
func Flatten(tree Tree, prefix string) (Flat, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	flat := Flat{
		Pages:     make([]PageEntry, 0, tree.Count()),
		Redirects: make(map[string]string),
	}
	if err := flattenEntries(tree.Entries, prefix, nil, &flat, 1); err != nil {
		return Flat{}, err
	}
	if err := checkAliasShadowing(&flat, prefix); err != nil {
		return Flat{}, err
	}
	return flat, nil
}

func flattenEntries(entries []Entry, prefix string, parents []string, flat *Flat, depth int) error {
	if depth > maxDepth {
		return errors.TocError(fmt.Sprintf("table of contents exceeds maximum depth %d", maxDepth)).Build()
	}
	for _, e := range entries {
		slugPath := make([]string, len(parents), len(parents)+1)
		copy(slugPath, parents)
		slugPath = append(slugPath, e.Slug)
		joined := strings.Join(slugPath, "/")

		flat.Pages = append(flat.Pages, PageEntry{
			Path: prefix + "/" + joined,
			Name: e.Name,
		})

		for _, alias := range e.Aliases {
			alias = strings.Trim(alias, "/")
			if alias == "" {
				continue
			}
			if existing, ok := flat.Redirects[alias]; ok {
				return errors.TocError(fmt.Sprintf("alias %q maps to both %s and %s", alias, existing, prefix+"/"+joined)).Build()
			}
			flat.Redirects[alias] = prefix + "/" + joined
		}

		if err := flattenEntries(e.Children, prefix, slugPath, flat, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkAliasShadowing rejects aliases that would hide a live page. The
// router consults the redirect index before the page list, so an alias
// equal to an existing slug path would make that page unreachable.
func checkAliasShadowing(flat *Flat, prefix string) error {
	for alias, target := range flat.Redirects {
		page := prefix + "/" + alias
		for _, p := range flat.Pages {
			if p.Path == page {
				return errors.TocError(fmt.Sprintf("alias %q shadows existing page %s (redirects to %s)", alias, page, target)).Build()
			}
		}
	}
	return nil
}
