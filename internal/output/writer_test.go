package output

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpdswing/mineru-web/internal/analysis"
	"github.com/lpdswing/mineru-web/internal/dispatch"
)

type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	f.objects[bucket+"/"+key] = data
	f.types[bucket+"/"+key] = contentType
	return nil
}

func sampleResult() dispatch.DocumentResult {
	return dispatch.DocumentResult{
		Name: "doc.pdf",
		Middle: &analysis.Middle{
			PDFInfo: []analysis.Page{
				{
					PageIdx: 0,
					ParaBlocks: []analysis.Block{
						{Type: analysis.BlockTitle, Text: "Introduction", TextLevel: 1},
						{Type: analysis.BlockText, Text: "Hello world."},
						{Type: analysis.BlockImage, ImagePath: "fig1.png"},
					},
				},
				{
					PageIdx:    1,
					ParaBlocks: nil,
				},
				{
					PageIdx: 2,
					ParaBlocks: []analysis.Block{
						{Type: analysis.BlockText, Text: "Last page."},
					},
				},
			},
		},
		Model: []byte(`[{"page":0}]`),
	}
}

func TestWriterArtifactSet(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store, "mds", "http://localhost:9000")

	primary, err := w.Write(context.Background(), "abc", sampleResult(), dispatch.FamilyPipeline, DefaultFlags())
	require.NoError(t, err)

	assert.Contains(t, store.objects, "mds/abc.md")
	assert.Contains(t, store.objects, "mds/abc_pages.md")
	assert.Contains(t, store.objects, "mds/abc_middle.json")
	assert.Contains(t, store.objects, "mds/abc_model.json")
	assert.NotContains(t, store.objects, "mds/abc_content_list.json")

	assert.Equal(t, string(store.objects["mds/abc.md"]), primary)
	assert.Contains(t, primary, "# Introduction")
	assert.Contains(t, primary, "Hello world.")
	// Image reference must already be rewritten to the public URL.
	assert.Contains(t, primary, "![](http://localhost:9000/mds/images/fig1.png)")
	assert.NotContains(t, primary, "![](images/fig1.png)")
}

func TestWriterPageDelimiters(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store, "mds", "http://localhost:9000")

	_, err := w.Write(context.Background(), "abc", sampleResult(), dispatch.FamilyPipeline, DefaultFlags())
	require.NoError(t, err)

	paged := string(store.objects["mds/abc_pages.md"])
	dashes := strings.Repeat("-", 48)
	assert.Contains(t, paged, "{0}"+dashes)
	assert.Contains(t, paged, "{2}"+dashes)
	// Page 1 has no content, so no delimiter for it.
	assert.NotContains(t, paged, "{1}"+dashes)
}

func TestWriterContentListFlag(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store, "mds", "http://localhost:9000")

	flags := DefaultFlags()
	flags.DumpContentList = true
	_, err := w.Write(context.Background(), "abc", sampleResult(), dispatch.FamilyPipeline, flags)
	require.NoError(t, err)

	data := string(store.objects["mds/abc_content_list.json"])
	assert.Contains(t, data, `"type": "title"`)
	assert.Contains(t, data, `"img_path": "images/fig1.png"`)
}

func TestWriterMarkdownOnlyFlags(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store, "mds", "http://localhost:9000")

	flags := Flags{DumpMarkdown: true}
	_, err := w.Write(context.Background(), "abc", sampleResult(), dispatch.FamilyPipeline, flags)
	require.NoError(t, err)

	assert.Contains(t, store.objects, "mds/abc.md")
	assert.NotContains(t, store.objects, "mds/abc_middle.json")
	assert.NotContains(t, store.objects, "mds/abc_model.json")
}

func TestStableJSONKeepsNonASCII(t *testing.T) {
	data, err := stableJSON(map[string]string{"text": "中文 & <b>"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "中文 & <b>")
}

func TestImageSinkPrefix(t *testing.T) {
	store := newFakeStore()
	sink := NewImageSink(store, "mds")

	require.NoError(t, sink.WriteImage(context.Background(), "fig1.png", []byte{1, 2, 3}))
	assert.Contains(t, store.objects, "mds/images/fig1.png")
	assert.Equal(t, "image/png", store.types["mds/images/fig1.png"])
}

func TestExportKeyAndFilename(t *testing.T) {
	key, err := ExportKey("abc", FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "abc.md", key)

	key, err = ExportKey("abc", FormatMarkdownPage)
	require.NoError(t, err)
	assert.Equal(t, "abc_pages.md", key)

	_, err = ExportKey("abc", "pdf")
	assert.Error(t, err)

	name, err := ExportFilename("report.pdf", FormatMarkdownPage)
	require.NoError(t, err)
	assert.Equal(t, "report_pages.md", name)
}
