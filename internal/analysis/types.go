package analysis

import "encoding/json"

// Middle is the backend-neutral intermediate document model both analysis
// families converge on before markdown rendering. Its JSON shape mirrors the
// middle_json artifact persisted alongside the rendered output.
type Middle struct {
	PDFInfo []Page `json:"pdf_info"`
	Version string `json:"version,omitempty"`
}

// Page holds the layout blocks of one document page.
type Page struct {
	PageIdx    int       `json:"page_idx"`
	PageSize   []float64 `json:"page_size,omitempty"`
	ParaBlocks []Block   `json:"para_blocks"`
}

// Block types emitted by the analysis backends.
const (
	BlockText     = "text"
	BlockTitle    = "title"
	BlockImage    = "image"
	BlockTable    = "table"
	BlockEquation = "interline_equation"
)

// Block is one layout element. Image and table blocks carry a path relative to
// the images/ prefix of the artifacts bucket; table blocks additionally carry
// their HTML body.
type Block struct {
	Type      string  `json:"type"`
	Text      string  `json:"text,omitempty"`
	TextLevel int     `json:"text_level,omitempty"`
	ImagePath string  `json:"image_path,omitempty"`
	HTML      string  `json:"html,omitempty"`
	Caption   string  `json:"caption,omitempty"`
	Blocks    []Block `json:"blocks,omitempty"`
}

// RawModel is the opaque native model output of a backend, persisted verbatim
// as the model JSON artifact.
type RawModel = json.RawMessage
