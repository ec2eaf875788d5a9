package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"

	"github.com/Fraol-M/metta-assistant/internal/model"
	"github.com/Fraol-M/metta-assistant/internal/source"
)

// ChunkID derives the dedup key from the chunk's stable identity fields
// plus a content digest. Re-ingesting unchanged content reproduces the same
// id, so the store's duplicate check suppresses the re-insert.
func ChunkID(parts ...string) string {
	hash := sha256.New()
	for _, part := range parts {
		hash.Write([]byte(part))
		hash.Write([]byte{0})
	}
	return hex.EncodeToString(hash.Sum(nil))
}

// BuildChunks splits one fetched document into chunk records. Markdown
// files and fetched pages become documentation chunks; everything else is
// treated as code.
func BuildChunks(ref string, doc source.Document, chunkSize int) []*model.Chunk {
	if isDocumentation(doc.Path) {
		return buildDocChunks(ref, doc, chunkSize)
	}
	return buildCodeChunks(ref, doc, chunkSize)
}

func buildDocChunks(ref string, doc source.Document, chunkSize int) []*model.Chunk {
	pageURL := doc.Path
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = strings.TrimSuffix(ref, "/") + "/" + strings.TrimPrefix(doc.Path, "/")
	}
	title := firstHeading(doc.Content)
	if title == "" {
		title = path.Base(doc.Path)
	}
	candidates := SplitMarkdown(doc.Content, chunkSize)
	chunks := make([]*model.Chunk, 0, len(candidates))
	for _, cand := range candidates {
		digest := ChunkID(cand.Text)
		chunks = append(chunks, &model.Chunk{
			ChunkID: ChunkID(string(model.SourceDocumentation), pageURL, cand.Section, digest),
			Source:  model.SourceDocumentation,
			Text:    cand.Text,
			Doc: &model.DocMetadata{
				URL:       pageURL,
				PageTitle: title,
				Category:  cand.Section,
			},
		})
	}
	return chunks
}

func buildCodeChunks(ref string, doc source.Document, chunkSize int) []*model.Chunk {
	project := projectName(ref)
	candidates := SplitCode(doc.Content, chunkSize)
	chunks := make([]*model.Chunk, 0, len(candidates))
	for _, cand := range candidates {
		digest := ChunkID(cand.Text)
		chunks = append(chunks, &model.Chunk{
			ChunkID: ChunkID(string(model.SourceCode), project, ref, doc.Path, cand.Section, digest),
			Source:  model.SourceCode,
			Text:    cand.Text,
			Code: &model.CodeMetadata{
				Project: project,
				Repo:    ref,
				Section: []string{cand.Section},
				File:    []string{doc.Path},
			},
		})
	}
	return chunks
}

func isDocumentation(docPath string) bool {
	if strings.HasPrefix(docPath, "http://") || strings.HasPrefix(docPath, "https://") {
		return true
	}
	ext := strings.ToLower(path.Ext(docPath))
	return ext == ".md" || ext == ".markdown" || ext == ".html"
}

func projectName(ref string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(ref), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	name := path.Base(trimmed)
	if name == "" || name == "." {
		return trimmed
	}
	return name
}

func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
