package analysis

import "context"

// ImageWriter receives images extracted during analysis. Implementations
// decide where the bytes land; block image paths are relative to that sink.
type ImageWriter interface {
	WriteImage(ctx context.Context, name string, data []byte) error
}

// BatchRequest is the pipeline family's native calling convention: all
// documents of one parse request analyzed in a single batch.
type BatchRequest struct {
	Documents     [][]byte
	Langs         []string
	ParseMethod   string
	FormulaEnable bool
	TableEnable   bool
}

// BatchResult carries parallel per-document slices, index-aligned with the
// request's Documents.
type BatchResult struct {
	Models   []RawModel
	Images   [][][]byte
	Docs     []interface{}
	Langs    []string
	OCRFlags []bool
}

// PipelineAnalyzer is the local multi-document analysis capability.
type PipelineAnalyzer interface {
	AnalyzeBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)
	// ResultToMiddle converts one document's raw model output into the
	// backend-neutral middle representation, writing extracted images to sink.
	ResultToMiddle(ctx context.Context, model RawModel, images [][]byte, doc interface{}, sink ImageWriter, lang string, ocrEnabled, formulaEnable bool) (*Middle, error)
}

// VLMOptions configures a single vision-language-model analysis call.
type VLMOptions struct {
	Variant       string
	ModelPath     string
	ServerURL     string
	FormulaEnable bool
	TableEnable   bool
}

// VLMAnalyzer is the single-document vision-language analysis capability.
type VLMAnalyzer interface {
	AnalyzeOne(ctx context.Context, document []byte, sink ImageWriter, opts VLMOptions) (*Middle, RawModel, error)
}
