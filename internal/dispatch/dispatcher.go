package dispatch

import (
	"context"
	"fmt"

	"github.com/lpdswing/mineru-web/internal/analysis"
)

// Document is one input to a parse request.
type Document struct {
	Name string
	Data []byte
	Lang string
}

// Request is a normalized parse request for one batch of documents.
type Request struct {
	Documents     []Document
	Backend       Backend
	ParseMethod   string
	FormulaEnable bool
	TableEnable   bool
	StartPage     int
	EndPage       int
	ImageWriter   analysis.ImageWriter
}

// DocumentResult is the common triple both families are adapted into, in
// input order.
type DocumentResult struct {
	Name   string
	Middle *analysis.Middle
	Model  analysis.RawModel
}

// Dispatcher adapts the two analysis calling conventions into the output
// writer's expected shape. It performs no retries; analyzer errors propagate
// unchanged to the caller.
type Dispatcher struct {
	pipeline analysis.PipelineAnalyzer
	vlm      analysis.VLMAnalyzer
	// vlmModelPath is handed to in-process VLM variants.
	vlmModelPath string
}

func NewDispatcher(pipeline analysis.PipelineAnalyzer, vlm analysis.VLMAnalyzer, vlmModelPath string) *Dispatcher {
	return &Dispatcher{
		pipeline:     pipeline,
		vlm:          vlm,
		vlmModelPath: vlmModelPath,
	}
}

// Run normalizes every document once, dispatches to the backend family, and
// returns one result per input document in input order.
func (d *Dispatcher) Run(ctx context.Context, req Request) ([]DocumentResult, error) {
	normalized := make([][]byte, len(req.Documents))
	for i, doc := range req.Documents {
		data, err := NormalizeDocument(doc.Name, doc.Data, req.StartPage, req.EndPage)
		if err != nil {
			return nil, err
		}
		normalized[i] = data
	}

	switch req.Backend.Family {
	case FamilyPipeline:
		return d.runPipeline(ctx, req, normalized)
	case FamilyVLM:
		return d.runVLM(ctx, req, normalized)
	default:
		return nil, fmt.Errorf("unknown backend family: %s", req.Backend.Family)
	}
}

func (d *Dispatcher) runPipeline(ctx context.Context, req Request, docs [][]byte) ([]DocumentResult, error) {
	langs := make([]string, len(req.Documents))
	for i, doc := range req.Documents {
		langs[i] = doc.Lang
	}

	batch, err := d.pipeline.AnalyzeBatch(ctx, analysis.BatchRequest{
		Documents:     docs,
		Langs:         langs,
		ParseMethod:   req.ParseMethod,
		FormulaEnable: req.FormulaEnable,
		TableEnable:   req.TableEnable,
	})
	if err != nil {
		return nil, err
	}
	if len(batch.Models) != len(docs) {
		return nil, fmt.Errorf("pipeline returned %d results for %d documents", len(batch.Models), len(docs))
	}

	results := make([]DocumentResult, len(docs))
	for i := range docs {
		middle, err := d.pipeline.ResultToMiddle(ctx, batch.Models[i], batch.Images[i], batch.Docs[i],
			req.ImageWriter, batch.Langs[i], batch.OCRFlags[i], req.FormulaEnable)
		if err != nil {
			return nil, err
		}
		results[i] = DocumentResult{
			Name:   req.Documents[i].Name,
			Middle: middle,
			Model:  batch.Models[i],
		}
	}
	return results, nil
}

func (d *Dispatcher) runVLM(ctx context.Context, req Request, docs [][]byte) ([]DocumentResult, error) {
	opts := analysis.VLMOptions{
		Variant:       req.Backend.Variant,
		ModelPath:     d.vlmModelPath,
		ServerURL:     req.Backend.ServerURL,
		FormulaEnable: req.FormulaEnable,
		TableEnable:   req.TableEnable,
	}

	results := make([]DocumentResult, len(docs))
	for i, data := range docs {
		middle, rawModel, err := d.vlm.AnalyzeOne(ctx, data, req.ImageWriter, opts)
		if err != nil {
			return nil, err
		}
		results[i] = DocumentResult{
			Name:   req.Documents[i].Name,
			Middle: middle,
			Model:  rawModel,
		}
	}
	return results, nil
}
