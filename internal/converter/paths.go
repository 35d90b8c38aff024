package converter

import (
	"path/filepath"
	"strings"
)

// DatabaseName returns the base name of source without its last extension.
// A name that is only an extension (".mdb") is kept as is.
func DatabaseName(source string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// DefaultOutputPath returns source with its extension replaced by ".json".
func DefaultOutputPath(source string) string {
	dir := filepath.Dir(source)
	return filepath.Join(dir, DatabaseName(source)+".json")
}
