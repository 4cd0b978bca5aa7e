package render

import "regexp"

// Version tokens are expanded in the markdown source before parsing, so
// they work anywhere: prose, link destinations, and code samples alike.
// Whitespace inside the braces is tolerated.
var (
	versionToken    = regexp.MustCompile(`\{\{\s*version\s*\}\}`)
	stdVersionToken = regexp.MustCompile(`\{\{\s*std-version\s*\}\}`)
)

// ExpandTokens substitutes the per-version tokens in a page source.
func ExpandTokens(source []byte, vars Vars) []byte {
	out := stdVersionToken.ReplaceAll(source, []byte(vars.StdVersion))
	out = versionToken.ReplaceAll(out, []byte(vars.Version))
	return out
}
