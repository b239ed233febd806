package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/lpdswing/mineru-web/internal/analysis"
	"github.com/lpdswing/mineru-web/internal/dispatch"
)

// pageDelimiterWidth is the number of dashes following the {page_idx} marker
// in the page-annotated markdown variant.
const pageDelimiterWidth = 48

// ArtifactStore is the storage sink artifacts are persisted through.
type ArtifactStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// Flags selects which artifacts are written.
type Flags struct {
	DumpMarkdown    bool
	DumpContentList bool
	DumpMiddle      bool
	DumpModel       bool
}

// DefaultFlags writes everything except the content list.
func DefaultFlags() Flags {
	return Flags{
		DumpMarkdown:    true,
		DumpContentList: false,
		DumpMiddle:      true,
		DumpModel:       true,
	}
}

// Writer renders an analysis result into the fixed artifact set and persists
// each artifact via the store. Markdown artifacts pass through the image URL
// rewrite before persisting.
type Writer struct {
	store    ArtifactStore
	bucket   string
	endpoint string
}

func NewWriter(store ArtifactStore, bucket, endpoint string) *Writer {
	return &Writer{store: store, bucket: bucket, endpoint: endpoint}
}

// Write persists the artifact set for one document and returns the primary
// markdown. All other artifacts are side effects only.
func (w *Writer) Write(ctx context.Context, stem string, res dispatch.DocumentResult, family dispatch.Family, flags Flags) (string, error) {
	render := RendererFor(family)

	var primary string
	if flags.DumpMarkdown {
		var pieces []string
		for _, page := range res.Middle.PDFInfo {
			pieces = append(pieces, render(page.ParaBlocks, ImagesPrefix)...)
		}
		primary = RewriteImageURLs(strings.Join(pieces, "\n\n"), w.endpoint, w.bucket)
		if err := w.store.Put(ctx, w.bucket, MarkdownKey(stem), []byte(primary), "text/markdown"); err != nil {
			return "", err
		}

		paged := RewriteImageURLs(w.renderWithPages(res.Middle, render), w.endpoint, w.bucket)
		if err := w.store.Put(ctx, w.bucket, PagesKey(stem), []byte(paged), "text/markdown"); err != nil {
			return "", err
		}
	}

	if flags.DumpContentList {
		data, err := stableJSON(contentList(res.Middle))
		if err != nil {
			return "", fmt.Errorf("marshal content list: %w", err)
		}
		if err := w.store.Put(ctx, w.bucket, ContentListKey(stem), data, "application/json"); err != nil {
			return "", err
		}
	}

	if flags.DumpMiddle {
		data, err := stableJSON(res.Middle)
		if err != nil {
			return "", fmt.Errorf("marshal middle json: %w", err)
		}
		if err := w.store.Put(ctx, w.bucket, MiddleKey(stem), data, "application/json"); err != nil {
			return "", err
		}
	}

	if flags.DumpModel {
		data, err := indentRaw(res.Model)
		if err != nil {
			return "", fmt.Errorf("marshal model output: %w", err)
		}
		if err := w.store.Put(ctx, w.bucket, ModelKey(stem), data, "application/json"); err != nil {
			return "", err
		}
	}

	return primary, nil
}

// renderWithPages re-walks the middle representation per page, inserting a
// {page_idx} delimiter line of 48 dashes before each page's content.
func (w *Writer) renderWithPages(middle *analysis.Middle, render Renderer) string {
	var pieces []string
	for _, page := range middle.PDFInfo {
		if len(page.ParaBlocks) == 0 {
			continue
		}
		pieces = append(pieces, fmt.Sprintf("{%d}%s", page.PageIdx, strings.Repeat("-", pageDelimiterWidth)))
		pieces = append(pieces, render(page.ParaBlocks, ImagesPrefix)...)
	}
	return strings.Join(pieces, "\n\n")
}

type contentListItem struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ImgPath   string `json:"img_path,omitempty"`
	TextLevel int    `json:"text_level,omitempty"`
	PageIdx   int    `json:"page_idx"`
}

func contentList(middle *analysis.Middle) []contentListItem {
	items := []contentListItem{}
	for _, page := range middle.PDFInfo {
		for _, b := range flatten(page.ParaBlocks) {
			item := contentListItem{Type: b.Type, Text: b.Text, PageIdx: page.PageIdx}
			if b.Type == analysis.BlockTitle {
				item.TextLevel = b.TextLevel
			}
			if b.ImagePath != "" {
				item.ImgPath = path.Join(ImagesPrefix, b.ImagePath)
			}
			if b.Type == analysis.BlockTable && b.HTML != "" {
				item.Text = b.HTML
			}
			items = append(items, item)
		}
	}
	return items
}

func flatten(blocks []analysis.Block) []analysis.Block {
	var out []analysis.Block
	for _, b := range blocks {
		out = append(out, b)
		if len(b.Blocks) > 0 {
			out = append(out, flatten(b.Blocks)...)
		}
	}
	return out
}

// stableJSON marshals with deterministic key order, literal non-ASCII and
// 4-space indentation, matching the artifact format of the analysis stage.
func stableJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func indentRaw(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImageSink adapts the artifact store into the analysis stage's image writer,
// placing images under the images/ prefix of the artifacts bucket.
type ImageSink struct {
	store  ArtifactStore
	bucket string
	prefix string
}

func NewImageSink(store ArtifactStore, bucket string) *ImageSink {
	return &ImageSink{store: store, bucket: bucket, prefix: ImagesPrefix}
}

func (s *ImageSink) WriteImage(ctx context.Context, name string, data []byte) error {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	return s.store.Put(ctx, s.bucket, path.Join(s.prefix, name), data, contentType)
}
