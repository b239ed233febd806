package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpdswing/mineru-web/internal/analysis"
)

type fakePipeline struct {
	batches []analysis.BatchRequest
	fail    error
}

func (f *fakePipeline) AnalyzeBatch(_ context.Context, req analysis.BatchRequest) (*analysis.BatchResult, error) {
	f.batches = append(f.batches, req)
	if f.fail != nil {
		return nil, f.fail
	}
	n := len(req.Documents)
	res := &analysis.BatchResult{
		Models:   make([]analysis.RawModel, n),
		Images:   make([][][]byte, n),
		Docs:     make([]interface{}, n),
		Langs:    req.Langs,
		OCRFlags: make([]bool, n),
	}
	for i := range req.Documents {
		res.Models[i] = analysis.RawModel(fmt.Sprintf(`{"doc":%d}`, i))
	}
	return res, nil
}

func (f *fakePipeline) ResultToMiddle(_ context.Context, model analysis.RawModel, _ [][]byte, _ interface{},
	_ analysis.ImageWriter, lang string, _, _ bool) (*analysis.Middle, error) {
	var parsed struct {
		Doc int `json:"doc"`
	}
	if err := json.Unmarshal(model, &parsed); err != nil {
		return nil, err
	}
	return &analysis.Middle{PDFInfo: []analysis.Page{{
		PageIdx:    0,
		ParaBlocks: []analysis.Block{{Type: analysis.BlockText, Text: fmt.Sprintf("doc %d lang %s", parsed.Doc, lang)}},
	}}}, nil
}

type fakeVLM struct {
	calls []analysis.VLMOptions
	fail  error
}

func (f *fakeVLM) AnalyzeOne(_ context.Context, _ []byte, _ analysis.ImageWriter, opts analysis.VLMOptions) (*analysis.Middle, analysis.RawModel, error) {
	f.calls = append(f.calls, opts)
	if f.fail != nil {
		return nil, nil, f.fail
	}
	return &analysis.Middle{}, analysis.RawModel(`{}`), nil
}

func pipelineBackend() Backend {
	return Backend{Family: FamilyPipeline, Variant: "pipeline"}
}

func TestDispatcherPipelineBatchOrder(t *testing.T) {
	pipeline := &fakePipeline{}
	d := NewDispatcher(pipeline, &fakeVLM{}, "")

	req := Request{
		Documents: []Document{
			{Name: "a.pdf", Data: []byte("a"), Lang: "ch"},
			{Name: "b.pdf", Data: []byte("b"), Lang: "en"},
			{Name: "c.pdf", Data: []byte("c"), Lang: "ch"},
		},
		Backend:     pipelineBackend(),
		ParseMethod: "auto",
	}

	results, err := d.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// One batch call for the whole request.
	require.Len(t, pipeline.batches, 1)
	assert.Equal(t, []string{"ch", "en", "ch"}, pipeline.batches[0].Langs)

	// Results come back in input order.
	assert.Equal(t, "a.pdf", results[0].Name)
	assert.Equal(t, "b.pdf", results[1].Name)
	assert.Equal(t, "c.pdf", results[2].Name)
	assert.Equal(t, "doc 1 lang en", results[1].Middle.PDFInfo[0].ParaBlocks[0].Text)
}

func TestDispatcherVLMPerDocument(t *testing.T) {
	vlm := &fakeVLM{}
	d := NewDispatcher(&fakePipeline{}, vlm, "/models/vlm")

	req := Request{
		Documents: []Document{
			{Name: "a.pdf", Data: []byte("a")},
			{Name: "b.pdf", Data: []byte("b")},
		},
		Backend:       Backend{Family: FamilyVLM, Variant: "http-client", ServerURL: "http://127.0.0.1:30000"},
		FormulaEnable: true,
	}

	results, err := d.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Len(t, vlm.calls, 2)
	assert.Equal(t, "http-client", vlm.calls[0].Variant)
	assert.Equal(t, "http://127.0.0.1:30000", vlm.calls[0].ServerURL)
	assert.Equal(t, "/models/vlm", vlm.calls[0].ModelPath)
	assert.True(t, vlm.calls[0].FormulaEnable)
}

func TestDispatcherAnalyzerErrorPropagates(t *testing.T) {
	pipeline := &fakePipeline{fail: fmt.Errorf("gpu on fire")}
	d := NewDispatcher(pipeline, &fakeVLM{}, "")

	_, err := d.Run(context.Background(), Request{
		Documents: []Document{{Name: "a.pdf", Data: []byte("a")}},
		Backend:   pipelineBackend(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpu on fire")
}

func TestDispatcherRejectsUnsupportedFile(t *testing.T) {
	d := NewDispatcher(&fakePipeline{}, &fakeVLM{}, "")

	_, err := d.Run(context.Background(), Request{
		Documents: []Document{{Name: "notes.docx", Data: []byte("x")}},
		Backend:   pipelineBackend(),
	})
	assert.Error(t, err)
}
