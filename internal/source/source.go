package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Fraol-M/metta-assistant/internal/config"
)

// Document is one raw content unit handed to the splitter: a code file,
// a markdown page, or a fetched web page.
type Document struct {
	// Path identifies the document inside its source: a relative file
	// path for repository content, the URL for fetched pages.
	Path    string
	Content string
}

// Fetcher resolves a source reference (repository URL, directory, page URL)
// into raw documents. Splitting happens downstream.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]Document, error)
}

type Factory func(args interface{}) (Fetcher, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.SourceConfig) (Fetcher, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("source.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode source config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode source config: %w", err)
	}
	return nil
}
