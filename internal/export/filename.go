package export

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// WithExtension sanitises a user-typed file name and makes sure it ends with ext exactly
// once. Runs of unsafe characters become a single underscore. A blank name uses fallback.
func WithExtension(name, ext, fallback string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = fallback
	}
	normalized := unsafeFilenameChars.ReplaceAllString(trimmed, "_")
	if strings.HasSuffix(strings.ToLower(normalized), "."+strings.ToLower(ext)) {
		return normalized
	}
	return normalized + "." + ext
}
