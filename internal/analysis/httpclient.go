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

// HTTPVLMClient implements VLMAnalyzer against an inference server. Client
// variants carry their own server URL; the other variants run against the
// local analysis engine. Inference may take minutes for large documents,
// hence the generous default timeout.
type HTTPVLMClient struct {
	engineURL  string
	httpClient *http.Client
}

func NewHTTPVLMClient(engineURL string) *HTTPVLMClient {
	return &HTTPVLMClient{
		engineURL:  engineURL,
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
}

type vlmAnalyzeRequest struct {
	Document      string `json:"document"`
	Variant       string `json:"variant"`
	ModelPath     string `json:"model_path,omitempty"`
	FormulaEnable bool   `json:"formula_enable"`
	TableEnable   bool   `json:"table_enable"`
}

type vlmAnalyzeResponse struct {
	Middle *Middle           `json:"middle"`
	Model  json.RawMessage   `json:"model"`
	Images map[string]string `json:"images"`
}

func (c *HTTPVLMClient) AnalyzeOne(ctx context.Context, document []byte, sink ImageWriter, opts VLMOptions) (*Middle, RawModel, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = c.engineURL
	}
	if serverURL == "" {
		return nil, nil, fmt.Errorf("vlm http client: server url not configured")
	}

	payload, err := json.Marshal(vlmAnalyzeRequest{
		Document:      base64.StdEncoding.EncodeToString(document),
		Variant:       opts.Variant,
		ModelPath:     opts.ModelPath,
		FormulaEnable: opts.FormulaEnable,
		TableEnable:   opts.TableEnable,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("vlm http client: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(serverURL, "/") + "/v1/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("vlm http client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("vlm http client: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("vlm http client: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("vlm http client: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed vlmAnalyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("vlm http client: decode response: %w", err)
	}
	if parsed.Middle == nil {
		return nil, nil, fmt.Errorf("vlm http client: response missing middle representation")
	}

	for name, enc := range parsed.Images {
		data, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, nil, fmt.Errorf("vlm http client: decode image %s: %w", name, err)
		}
		if err := sink.WriteImage(ctx, name, data); err != nil {
			return nil, nil, fmt.Errorf("vlm http client: write image %s: %w", name, err)
		}
	}

	return parsed.Middle, parsed.Model, nil
}
