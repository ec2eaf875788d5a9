package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type localConfig struct {
	Root       string   `json:"root"`
	Extensions []string `json:"extensions"`
}

// localFetcher reads pre-cloned repository content from a directory tree.
// The ref is a subdirectory under root (or "." for the root itself).
type localFetcher struct {
	root string
	exts map[string]bool
}

func init() {
	Register("local", createLocalFetcher)
}

func createLocalFetcher(args interface{}) (Fetcher, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("local source root is required")
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".md", ".metta", ".py", ".go", ".txt"}
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &localFetcher{root: cfg.Root, exts: exts}, nil
}

func (f *localFetcher) Fetch(ctx context.Context, ref string) ([]Document, error) {
	clean := filepath.Clean(strings.TrimSpace(ref))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid source ref: %s", ref)
	}
	base := filepath.Join(f.root, clean)
	var docs []Document
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != base {
				return filepath.SkipDir
			}
			return nil
		}
		if !f.exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, Document{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
