package models

import "github.com/lpdswing/mineru-web/pkg/errors"

// FileStatus is the per-file lifecycle state. Transitions are owned by the
// parser service: pending -> parsing -> parsed | parse_failed.
type FileStatus string

const (
	StatusPending     FileStatus = "pending"
	StatusParsing     FileStatus = "parsing"
	StatusParsed      FileStatus = "parsed"
	StatusParseFailed FileStatus = "parse_failed"
)

// BackendType identifies the analysis backend a file is parsed with.
type BackendType string

const (
	BackendPipeline        BackendType = "pipeline"
	BackendVLMTransformers BackendType = "vlm-transformers"
	BackendVLMVLLMEngine   BackendType = "vlm-vllm-engine"
	BackendVLMHTTPClient   BackendType = "vlm-http-client"
)

// ParseBackendType validates a backend identifier. Unknown values are rejected
// here, at the settings boundary, not at parse time.
func ParseBackendType(s string) (BackendType, error) {
	switch BackendType(s) {
	case BackendPipeline, BackendVLMTransformers, BackendVLMVLLMEngine, BackendVLMHTTPClient:
		return BackendType(s), nil
	default:
		return "", errors.ErrInvalidBackend
	}
}

// ParseMethod values accepted by the analysis backends.
const (
	MethodAuto = "auto"
	MethodOCR  = "ocr"
	MethodTxt  = "txt"
)
