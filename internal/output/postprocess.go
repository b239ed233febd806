package output

import (
	"regexp"
	"strings"
)

// Matches markdown image syntax ![alt](path), capturing the path.
var imageRefPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)

// RewriteImageURLs rewrites relative image references into fully-qualified
// object-storage URLs. References that already carry an absolute scheme are
// left untouched, which makes the rewrite idempotent. The alt text of
// rewritten references is discarded.
func RewriteImageURLs(markdown, endpoint, bucket string) string {
	base := strings.TrimRight(endpoint, "/")
	return imageRefPattern.ReplaceAllStringFunc(markdown, func(ref string) string {
		imagePath := imageRefPattern.FindStringSubmatch(ref)[1]
		if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
			return ref
		}
		return "![](" + base + "/" + bucket + "/" + imagePath + ")"
	})
}
