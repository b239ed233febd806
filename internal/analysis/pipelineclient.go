package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPPipelineClient implements PipelineAnalyzer against the local analysis
// engine. The engine keeps the dataset of a batch alive between the analyze
// call and the per-document middle conversion; the opaque doc handles returned
// by the batch call are handed back unchanged.
type HTTPPipelineClient struct {
	engineURL  string
	httpClient *http.Client
}

func NewHTTPPipelineClient(engineURL string) *HTTPPipelineClient {
	return &HTTPPipelineClient{
		engineURL:  engineURL,
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
}

type pipelineBatchRequest struct {
	Documents     []string `json:"documents"`
	Langs         []string `json:"langs"`
	ParseMethod   string   `json:"parse_method"`
	FormulaEnable bool     `json:"formula_enable"`
	TableEnable   bool     `json:"table_enable"`
}

type pipelineBatchResponse struct {
	Models   []json.RawMessage `json:"models"`
	Images   [][]string        `json:"images"`
	Docs     []json.RawMessage `json:"docs"`
	Langs    []string          `json:"langs"`
	OCRFlags []bool            `json:"ocr_flags"`
}

func (c *HTTPPipelineClient) AnalyzeBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	encoded := make([]string, len(req.Documents))
	for i, doc := range req.Documents {
		encoded[i] = base64.StdEncoding.EncodeToString(doc)
	}

	payload, err := json.Marshal(pipelineBatchRequest{
		Documents:     encoded,
		Langs:         req.Langs,
		ParseMethod:   req.ParseMethod,
		FormulaEnable: req.FormulaEnable,
		TableEnable:   req.TableEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline client: marshal request: %w", err)
	}

	body, err := c.post(ctx, "/v1/analyze/batch", payload)
	if err != nil {
		return nil, err
	}

	var parsed pipelineBatchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("pipeline client: decode response: %w", err)
	}

	result := &BatchResult{
		Models:   make([]RawModel, len(parsed.Models)),
		Images:   make([][][]byte, len(parsed.Images)),
		Docs:     make([]interface{}, len(parsed.Docs)),
		Langs:    parsed.Langs,
		OCRFlags: parsed.OCRFlags,
	}
	for i, m := range parsed.Models {
		result.Models[i] = RawModel(m)
	}
	for i, docImages := range parsed.Images {
		decoded := make([][]byte, len(docImages))
		for j, enc := range docImages {
			data, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return nil, fmt.Errorf("pipeline client: decode image %d/%d: %w", i, j, err)
			}
			decoded[j] = data
		}
		result.Images[i] = decoded
	}
	for i, d := range parsed.Docs {
		result.Docs[i] = d
	}
	return result, nil
}

type pipelineMiddleRequest struct {
	Model         json.RawMessage `json:"model"`
	Images        []string        `json:"images"`
	Doc           interface{}     `json:"doc"`
	Lang          string          `json:"lang"`
	OCREnabled    bool            `json:"ocr_enabled"`
	FormulaEnable bool            `json:"formula_enable"`
}

type pipelineMiddleResponse struct {
	Middle *Middle           `json:"middle"`
	Images map[string]string `json:"images"`
}

func (c *HTTPPipelineClient) ResultToMiddle(ctx context.Context, model RawModel, images [][]byte, doc interface{},
	sink ImageWriter, lang string, ocrEnabled, formulaEnable bool) (*Middle, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}

	payload, err := json.Marshal(pipelineMiddleRequest{
		Model:         json.RawMessage(model),
		Images:        encoded,
		Doc:           doc,
		Lang:          lang,
		OCREnabled:    ocrEnabled,
		FormulaEnable: formulaEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline client: marshal middle request: %w", err)
	}

	body, err := c.post(ctx, "/v1/analyze/middle", payload)
	if err != nil {
		return nil, err
	}

	var parsed pipelineMiddleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("pipeline client: decode middle response: %w", err)
	}
	if parsed.Middle == nil {
		return nil, fmt.Errorf("pipeline client: response missing middle representation")
	}

	for name, enc := range parsed.Images {
		data, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("pipeline client: decode image %s: %w", name, err)
		}
		if err := sink.WriteImage(ctx, name, data); err != nil {
			return nil, fmt.Errorf("pipeline client: write image %s: %w", name, err)
		}
	}

	return parsed.Middle, nil
}

func (c *HTTPPipelineClient) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	if c.engineURL == "" {
		return nil, fmt.Errorf("pipeline client: engine url not configured")
	}

	endpoint := strings.TrimRight(c.engineURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("pipeline client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline client: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pipeline client: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pipeline client: engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
