package dispatch

import (
	"strings"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

// Family groups backends by calling convention.
type Family string

const (
	FamilyPipeline Family = "pipeline"
	FamilyVLM      Family = "vlm"
)

// Backend is the resolved, validated form of a backend identifier. It is
// constructed once at the settings/validation boundary so the dispatcher
// matches on a closed type instead of re-parsing strings.
type Backend struct {
	Family  Family
	Variant string
	// ServerURL is set only for client-style variants.
	ServerURL string
}

func (b Backend) IsClient() bool {
	return strings.HasSuffix(b.Variant, "client")
}

// Resolve validates a backend identifier and binds the server URL where the
// variant requires one. Client variants fail without a URL; every other
// variant ignores a supplied URL and runs in-process.
func Resolve(backend models.BackendType, serverURL string) (Backend, error) {
	switch backend {
	case models.BackendPipeline:
		return Backend{Family: FamilyPipeline, Variant: "pipeline"}, nil
	case models.BackendVLMTransformers, models.BackendVLMVLLMEngine, models.BackendVLMHTTPClient:
		variant := strings.TrimPrefix(string(backend), "vlm-")
		if strings.HasSuffix(variant, "client") {
			if serverURL == "" {
				return Backend{}, errors.ErrMissingServerURL
			}
			return Backend{Family: FamilyVLM, Variant: variant, ServerURL: serverURL}, nil
		}
		return Backend{Family: FamilyVLM, Variant: variant}, nil
	default:
		return Backend{}, errors.ErrInvalidBackend
	}
}
