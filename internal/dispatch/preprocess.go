package dispatch

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lpdswing/mineru-web/pkg/errors"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfExtensions = map[string]bool{
	".pdf": true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpeg": true,
	".jp2":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".jpg":  true,
	".tiff": true,
}

// Supported reports whether a filename carries an extension the analysis
// stage can handle. Used at upload time so unsupported files never enter the
// lifecycle.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return pdfExtensions[ext] || imageExtensions[ext]
}

func relaxedConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// NormalizeDocument converts any supported upload into a single PDF container
// and optionally trims it to a page range. Images become a one-page PDF;
// PDFs pass through untouched unless a range is requested. This runs exactly
// once per document, before family dispatch.
func NormalizeDocument(name string, data []byte, startPage, endPage int) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case imageExtensions[ext]:
		var buf bytes.Buffer
		imp := pdfcpu.DefaultImportConfig()
		if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(data)}, imp, relaxedConf()); err != nil {
			return nil, fmt.Errorf("convert image to pdf: %w", err)
		}
		return buf.Bytes(), nil

	case pdfExtensions[ext]:
		if startPage <= 0 && endPage <= 0 {
			return data, nil
		}
		pages, err := pageSelection(bytes.NewReader(data), startPage, endPage)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &buf, pages, relaxedConf()); err != nil {
			return nil, fmt.Errorf("trim pdf pages: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, errors.NewError(errors.ErrUnsupportedFileType.Code,
			fmt.Sprintf("unsupported file type: %s", ext), errors.ErrUnsupportedFileType.Status)
	}
}

func pageSelection(rs *bytes.Reader, startPage, endPage int) ([]string, error) {
	count, err := api.PageCount(rs, relaxedConf())
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if _, err := rs.Seek(0, 0); err != nil {
		return nil, err
	}

	if startPage <= 0 {
		startPage = 1
	}
	if endPage <= 0 || endPage > count {
		endPage = count
	}
	if startPage > endPage {
		return nil, errors.NewError(errors.ErrBadRequest.Code,
			fmt.Sprintf("invalid page range %d-%d for %d pages", startPage, endPage, count),
			errors.ErrBadRequest.Status)
	}
	return []string{fmt.Sprintf("%d-%d", startPage, endPage)}, nil
}
