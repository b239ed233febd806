package output

import (
	"path"
	"strings"

	"github.com/lpdswing/mineru-web/internal/analysis"
	"github.com/lpdswing/mineru-web/internal/dispatch"
)

// Renderer turns one page's layout blocks into markdown fragments. The two
// families produce semantically equivalent but not byte-identical markdown,
// so each keeps its own renderer.
type Renderer func(blocks []analysis.Block, imagePrefix string) []string

// RendererFor selects the markdown renderer for a backend family.
func RendererFor(family dispatch.Family) Renderer {
	if family == dispatch.FamilyPipeline {
		return pipelineBlocksToMarkdown
	}
	return vlmBlocksToMarkdown
}

func heading(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}

func imageRef(prefix, imagePath string) string {
	return "![](" + path.Join(prefix, imagePath) + ")"
}

func pipelineBlocksToMarkdown(blocks []analysis.Block, imagePrefix string) []string {
	var out []string
	for _, b := range blocks {
		switch b.Type {
		case analysis.BlockTitle:
			out = append(out, heading(b.TextLevel, b.Text))
		case analysis.BlockText:
			if b.Text != "" {
				out = append(out, b.Text)
			}
		case analysis.BlockImage:
			if b.ImagePath != "" {
				out = append(out, imageRef(imagePrefix, b.ImagePath))
			}
		case analysis.BlockTable:
			if b.Caption != "" {
				out = append(out, b.Caption)
			}
			if b.HTML != "" {
				out = append(out, b.HTML)
			} else if b.ImagePath != "" {
				out = append(out, imageRef(imagePrefix, b.ImagePath))
			}
		case analysis.BlockEquation:
			if b.Text != "" {
				out = append(out, "$$\n"+b.Text+"\n$$")
			}
		}
		if len(b.Blocks) > 0 {
			out = append(out, pipelineBlocksToMarkdown(b.Blocks, imagePrefix)...)
		}
	}
	return out
}

func vlmBlocksToMarkdown(blocks []analysis.Block, imagePrefix string) []string {
	var out []string
	for _, b := range blocks {
		switch b.Type {
		case analysis.BlockTitle:
			out = append(out, heading(b.TextLevel, b.Text))
		case analysis.BlockText:
			if b.Text != "" {
				out = append(out, b.Text)
			}
		case analysis.BlockImage:
			if b.ImagePath != "" {
				out = append(out, imageRef(imagePrefix, b.ImagePath))
			}
		case analysis.BlockTable:
			if b.HTML != "" {
				out = append(out, b.HTML)
			} else if b.ImagePath != "" {
				out = append(out, imageRef(imagePrefix, b.ImagePath))
			}
		case analysis.BlockEquation:
			if b.Text != "" {
				out = append(out, "$$"+b.Text+"$$")
			}
		}
		if len(b.Blocks) > 0 {
			out = append(out, vlmBlocksToMarkdown(b.Blocks, imagePrefix)...)
		}
	}
	return out
}
