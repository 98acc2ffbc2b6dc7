package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/whitespace"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("whitespace", func(map[string]any) (driven.PostProcessor, error) {
		return whitespace.New(), nil
	})
}

// BuildPipeline constructs a pipeline from configuration using the registry.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		p.Add(proc)
	}
	return p, nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_length (int): Character budget per chunk (default: 800)
//   - overlap_words (int): Words shared by consecutive chunks (default: 0)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_length"); n > 0 {
			opts = append(opts, chunker.WithMaxLength(n))
		}
		if n := getIntFromConfig(cfg, "overlap_words"); n >= 0 {
			opts = append(opts, chunker.WithOverlapWords(n))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
