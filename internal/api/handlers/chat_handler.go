package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/core/ingestion_engine"
	"github.com/docuchat-ai/docuchat/internal/models"
)

// ChatHandler exposes the ingestion pipeline over HTTP: creating a
// "chat" for an uploaded PDF runs ingestion, querying one runs a
// namespace-scoped similarity search.
type ChatHandler struct {
	objects  core.ObjectClient
	ingestor ingestion_engine.Ingestor
	embedder core.EmbeddingProvider
	index    core.VectorIndex
	logger   *zap.Logger
}

func NewChatHandler(obj core.ObjectClient, ing ingestion_engine.Ingestor, emb core.EmbeddingProvider, index core.VectorIndex, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{objects: obj, ingestor: ing, embedder: emb, index: index, logger: logger}
}

type createChatRequest struct {
	FileKey  string `json:"file_key"`
	FileName string `json:"file_name"`
}

type createChatResponse struct {
	Namespace  string        `json:"namespace"`
	PdfName    string        `json:"pdf_name"`
	PdfURL     string        `json:"pdf_url"`
	PageCount  int           `json:"page_count"`
	ChunkCount int           `json:"chunk_count"`
	Preview    *models.Chunk `json:"preview,omitempty"`
}

// CreateChat ingests an already-uploaded PDF into the vector index.
// The call is synchronous and can take a while for large documents.
// Internal failure detail stays in the logs; clients only learn that
// ingestion failed.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileKey == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	doc, err := h.ingestor.Ingest(ctx, req.FileKey)
	if err != nil {
		h.logger.Error("ingestion failed",
			zap.String("file_key", req.FileKey),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, createChatResponse{
		Namespace:  doc.Namespace,
		PdfName:    req.FileName,
		PdfURL:     h.objects.URL(req.FileKey),
		PageCount:  doc.PageCount,
		ChunkCount: doc.ChunkCount,
		Preview:    doc.Preview,
	})
}

type queryRequest struct {
	FileKey string `json:"file_key"`
	Query   string `json:"query"`
	TopK    int    `json:"top_k"`
}

type queryResponse struct {
	Namespace string               `json:"namespace"`
	Matches   []models.SearchMatch `json:"matches"`
}

// Query embeds the question and returns the closest chunks from the
// document's namespace. Retrieval only; answering is a client concern.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileKey == "" || req.Query == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	vec, err := h.embedder.EmbedText(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("query embedding failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	namespace := ingestion_engine.NamespaceForKey(req.FileKey)
	matches, err := h.index.Query(r.Context(), namespace, vec, req.TopK)
	if err != nil {
		h.logger.Error("similarity query failed", zap.String("namespace", namespace), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{Namespace: namespace, Matches: matches})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
