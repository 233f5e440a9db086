package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultPrefix names downloaded prediction files.
const DefaultPrefix = "churn_predictions"

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{UTC timestamp}.{ext}, e.g.
// churn_predictions_20240115T103000Z.csv. An empty prefix uses DefaultPrefix.
func BuildFilename(prefix, ext string, now time.Time) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.UTC().Format("20060102T150405Z"), strings.TrimPrefix(ext, "."))
}
