package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lpdswing/mineru-web/pkg/errors"
)

// Export formats accepted by the export endpoint.
const (
	FormatMarkdown     = "markdown"
	FormatMarkdownPage = "markdown_page"
)

// ImagesPrefix is where analysis images land, relative to the artifacts
// bucket, so rendered markdown and images stay in sibling locations.
const ImagesPrefix = "images"

// Artifact key naming shared by the writer and the export/read paths.
// For a document stem X: X.md, X_pages.md, X_content_list.json,
// X_middle.json, X_model.json.

func MarkdownKey(stem string) string    { return stem + ".md" }
func PagesKey(stem string) string       { return stem + "_pages.md" }
func ContentListKey(stem string) string { return stem + "_content_list.json" }
func MiddleKey(stem string) string      { return stem + "_middle.json" }
func ModelKey(stem string) string       { return stem + "_model.json" }

// Stem strips the directory and extension from a storage path or filename.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExportKey resolves the stored artifact key for an export format.
func ExportKey(stem, format string) (string, error) {
	switch format {
	case FormatMarkdown:
		return MarkdownKey(stem), nil
	case FormatMarkdownPage:
		return PagesKey(stem), nil
	default:
		return "", errors.NewError(errors.ErrBadRequest.Code,
			fmt.Sprintf("unsupported export format: %s", format), errors.ErrBadRequest.Status)
	}
}

// ExportFilename derives the user-facing download name from the original
// upload name.
func ExportFilename(originalName, format string) (string, error) {
	stem := Stem(originalName)
	switch format {
	case FormatMarkdown:
		return stem + ".md", nil
	case FormatMarkdownPage:
		return stem + "_pages.md", nil
	default:
		return "", errors.NewError(errors.ErrBadRequest.Code,
			fmt.Sprintf("unsupported export format: %s", format), errors.ErrBadRequest.Status)
	}
}
