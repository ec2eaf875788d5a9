package model

import (
	"fmt"
	"strconv"
	"strings"
)

type SourceKind string

const (
	SourceCode          SourceKind = "code"
	SourceDocumentation SourceKind = "documentation"
)

// Chunk is the stored unit of ingested content: a common envelope plus a
// metadata payload that depends on the source tag. Exactly one of Code/Doc
// is set, matching Source.
type Chunk struct {
	ChunkID    string        `json:"chunk_id"`
	Source     SourceKind    `json:"source"`
	Text       string        `json:"chunk"`
	IsEmbedded bool          `json:"is_embedded"`
	Code       *CodeMetadata `json:"code,omitempty"`
	Doc        *DocMetadata  `json:"doc,omitempty"`
	Ctime      int64         `json:"ctime"`
	Mtime      int64         `json:"mtime"`
}

type CodeMetadata struct {
	Project string   `json:"project"`
	Repo    string   `json:"repo"`
	Section []string `json:"section,omitempty"`
	File    []string `json:"file,omitempty"`
	Version string   `json:"version,omitempty"`
}

type DocMetadata struct {
	URL       string `json:"url"`
	PageTitle string `json:"page_title"`
	Category  string `json:"category,omitempty"`
}

// Validate checks the envelope and the variant payload for the declared tag.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.ChunkID) == "" {
		return fmt.Errorf("chunk_id is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("chunk text is required")
	}
	switch c.Source {
	case SourceCode:
		if c.Code == nil || c.Doc != nil {
			return fmt.Errorf("code chunk requires code metadata only")
		}
		if c.Code.Project == "" || c.Code.Repo == "" {
			return fmt.Errorf("code chunk requires project and repo")
		}
	case SourceDocumentation:
		if c.Doc == nil || c.Code != nil {
			return fmt.Errorf("documentation chunk requires doc metadata only")
		}
		if c.Doc.URL == "" || c.Doc.PageTitle == "" {
			return fmt.Errorf("documentation chunk requires url and page_title")
		}
	default:
		return fmt.Errorf("unknown source kind: %q", c.Source)
	}
	return nil
}

// PayloadMirror flattens the metadata for the vector index so search hits
// can be served without a join back to the document store.
func (c *Chunk) PayloadMirror() map[string]string {
	payload := map[string]string{
		"source": string(c.Source),
	}
	switch c.Source {
	case SourceCode:
		if c.Code == nil {
			break
		}
		payload["project"] = c.Code.Project
		payload["repo"] = c.Code.Repo
		if len(c.Code.Section) > 0 {
			payload["section"] = strings.Join(c.Code.Section, ",")
		}
		if len(c.Code.File) > 0 {
			payload["file"] = strings.Join(c.Code.File, ",")
		}
		if c.Code.Version != "" {
			payload["version"] = c.Code.Version
		}
	case SourceDocumentation:
		if c.Doc == nil {
			break
		}
		payload["url"] = c.Doc.URL
		payload["page_title"] = c.Doc.PageTitle
		if c.Doc.Category != "" {
			payload["category"] = c.Doc.Category
		}
	}
	return payload
}

// ChunkPatch carries the updatable fields of a chunk. Nil means unchanged.
type ChunkPatch struct {
	Text       *string       `json:"chunk,omitempty"`
	IsEmbedded *bool         `json:"is_embedded,omitempty"`
	Code       *CodeMetadata `json:"code,omitempty"`
	Doc        *DocMetadata  `json:"doc,omitempty"`
}

func (p *ChunkPatch) Empty() bool {
	return p.Text == nil && p.IsEmbedded == nil && p.Code == nil && p.Doc == nil
}

func (p *ChunkPatch) String() string {
	var parts []string
	if p.Text != nil {
		parts = append(parts, "chunk")
	}
	if p.IsEmbedded != nil {
		parts = append(parts, "is_embedded="+strconv.FormatBool(*p.IsEmbedded))
	}
	if p.Code != nil {
		parts = append(parts, "code")
	}
	if p.Doc != nil {
		parts = append(parts, "doc")
	}
	return strings.Join(parts, ",")
}
