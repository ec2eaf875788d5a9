package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCodeChunk() *Chunk {
	return &Chunk{
		ChunkID: "id-1",
		Source:  SourceCode,
		Text:    "def f(): pass",
		Code:    &CodeMetadata{Project: "metta", Repo: "https://example.com/metta.git"},
	}
}

func validDocChunk() *Chunk {
	return &Chunk{
		ChunkID: "id-2",
		Source:  SourceDocumentation,
		Text:    "Atoms are the basic building blocks.",
		Doc:     &DocMetadata{URL: "https://docs.example.com/atoms", PageTitle: "Atoms", Category: "basics"},
	}
}

func TestChunkValidate(t *testing.T) {
	require.NoError(t, validCodeChunk().Validate())
	require.NoError(t, validDocChunk().Validate())

	missing := validCodeChunk()
	missing.ChunkID = ""
	require.Error(t, missing.Validate())

	blank := validCodeChunk()
	blank.Text = "   "
	require.Error(t, blank.Validate())

	wrongKind := validCodeChunk()
	wrongKind.Source = "binary"
	require.Error(t, wrongKind.Validate())

	crossed := validCodeChunk()
	crossed.Doc = &DocMetadata{URL: "x", PageTitle: "y"}
	require.Error(t, crossed.Validate())

	noProject := validCodeChunk()
	noProject.Code.Project = ""
	require.Error(t, noProject.Validate())

	noURL := validDocChunk()
	noURL.Doc.URL = ""
	require.Error(t, noURL.Validate())
}

func TestPayloadMirror(t *testing.T) {
	code := validCodeChunk()
	code.Code.File = []string{"src/main.py"}
	code.Code.Section = []string{"L1-L10"}
	payload := code.PayloadMirror()
	require.Equal(t, "code", payload["source"])
	require.Equal(t, "metta", payload["project"])
	require.Equal(t, "src/main.py", payload["file"])
	require.Equal(t, "L1-L10", payload["section"])

	doc := validDocChunk().PayloadMirror()
	require.Equal(t, "documentation", doc["source"])
	require.Equal(t, "https://docs.example.com/atoms", doc["url"])
	require.Equal(t, "Atoms", doc["page_title"])
	require.Equal(t, "basics", doc["category"])
}

func TestChunkPatchEmpty(t *testing.T) {
	require.True(t, (&ChunkPatch{}).Empty())

	text := "new"
	require.False(t, (&ChunkPatch{Text: &text}).Empty())
}

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole(RoleUser))
	require.True(t, ValidRole(RoleAdmin))
	require.False(t, ValidRole("superuser"))
	require.False(t, ValidRole(""))
}
