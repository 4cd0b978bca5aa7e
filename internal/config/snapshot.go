package config

import (
    "crypto/sha256"
    "encoding/hex"
    "strings"
)

// Snapshot computes a stable hash of serve-affecting normalized configuration fields.
// The config watcher compares snapshots to skip reloads when only cosmetic fields
// (comments, key order) changed. Callers SHOULD load through Load so defaults and
// normalization have produced canonical values first.
func (c *Config) Snapshot() string {
    if c == nil { return "" }
    h := sha256.New()
    w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
    // Serving surface
    w("server.base_path", c.Server.BasePath)
    // Source selection
    w("source.kind", string(c.Source.Kind))
    w("source.toc_path", c.Source.TocPath)
    if c.Source.HTTP != nil {
        w("source.http.url_template", c.Source.HTTP.URLTemplate)
    }
    if c.Source.Git != nil {
        w("source.git.url", c.Source.Git.URL)
    }
    // Version list drives routing defaults and the navigation switcher; order matters.
    w("versions.default", c.Versions.Default)
    for _, v := range c.Versions.List {
        w("versions.entry", v.Name, v.Std, v.Display)
    }
    // Monitoring logging (affects runtime logging but not page content; included for completeness)
    if c.Monitoring != nil { w("monitoring.logging.level", string(c.Monitoring.Logging.Level)); w("monitoring.logging.format", string(c.Monitoring.Logging.Format)) }
    return hex.EncodeToString(h.Sum(nil))
}
