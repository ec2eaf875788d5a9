package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Fraol-M/metta-assistant/internal/model"
	"github.com/Fraol-M/metta-assistant/internal/pkg/response"
	"github.com/Fraol-M/metta-assistant/internal/repo"
	"github.com/Fraol-M/metta-assistant/internal/service"
)

const defaultChunkSize = 500

type ChunkHandler struct {
	ingest *service.IngestService
	embed  *service.EmbedService
	search *service.SearchService
	chunks *service.ChunkService
}

func NewChunkHandler(ingest *service.IngestService, embed *service.EmbedService,
	search *service.SearchService, chunks *service.ChunkService) *ChunkHandler {
	return &ChunkHandler{ingest: ingest, embed: embed, search: search, chunks: chunks}
}

func (h *ChunkHandler) Ingest(c *gin.Context) {
	repoURL := c.Query("repo_url")
	chunkSize := defaultChunkSize
	if raw := c.Query("chunk_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusUnprocessableEntity, "invalid", "chunk_size must be a positive integer")
			return
		}
		chunkSize = parsed
	}
	count, err := h.ingest.Ingest(c.Request.Context(), repoURL, chunkSize)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"message": "Ingestion completed",
		"count":   count,
	})
}

func (h *ChunkHandler) Embed(c *gin.Context) {
	count, err := h.embed.ProcessPending(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Embedding completed",
		"count":   count,
	})
}

func (h *ChunkHandler) Search(c *gin.Context) {
	query := c.Query("q")
	topK := 0
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusUnprocessableEntity, "invalid", "top_k must be an integer")
			return
		}
		topK = parsed
	}
	hits, err := h.search.Search(c.Request.Context(), query, topK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"query":   query,
		"results": hits,
	})
}

func (h *ChunkHandler) List(c *gin.Context) {
	filter := repo.ChunkFilter{
		Source:   model.SourceKind(c.Query("source")),
		Project:  c.Query("project"),
		Category: c.Query("category"),
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusUnprocessableEntity, "invalid", "limit must be an integer")
			return
		}
		limit = parsed
	}
	list, err := h.chunks.List(c.Request.Context(), filter, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"chunks": list,
		"count":  len(list),
	})
}

func (h *ChunkHandler) Get(c *gin.Context) {
	chunk, err := h.chunks.Get(c.Request.Context(), c.Param("chunk_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chunk)
}

func (h *ChunkHandler) Update(c *gin.Context) {
	var patch model.ChunkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid", "malformed patch body")
		return
	}
	chunk, err := h.chunks.Update(c.Request.Context(), c.Param("chunk_id"), &patch)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Chunk updated successfully",
		"chunk":   chunk,
	})
}

func (h *ChunkHandler) Delete(c *gin.Context) {
	if err := h.chunks.Delete(c.Request.Context(), c.Param("chunk_id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
