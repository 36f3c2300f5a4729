// Package handlers implements the statement import HTTP API
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/importer"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/textenc"
)

// Messages returned in error responses
const (
	MsgPreviewNotFound = "プレビューが見つからないか期限切れです"
	MsgNoFile          = "ファイルがアップロードされていません"
	MsgFileTooLarge    = "ファイルサイズが上限を超えています"
	MsgInvalidFilter   = "検索条件が不正です"
)

// Handler serves the import API
type Handler struct {
	importer       *importer.Service
	registry       *registry.Registry
	previews       *cache.Cache
	maxUploadBytes int64
}

// New creates a handler. Previews are kept for previewTTL before a commit must
// re-upload the file.
func New(svc *importer.Service, reg *registry.Registry, maxUploadBytes int64, previewTTL time.Duration) *Handler {
	return &Handler{
		importer:       svc,
		registry:       reg,
		previews:       cache.New(previewTTL, 2*previewTTL),
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

type formatsResponse struct {
	Banks []registry.FormatInfo `json:"banks"`
	Cards []registry.FormatInfo `json:"cards"`
}

// Formats handles GET /api/formats
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, formatsResponse{
		Banks: h.registry.ListBanks(),
		Cards: h.registry.ListCards(),
	})
}

type bankPreviewResponse struct {
	PreviewID string             `json:"previewId,omitempty"`
	Encoding  textenc.Encoding   `json:"encoding"`
	Result    *parser.BankResult `json:"result"`
}

type cardPreviewResponse struct {
	PreviewID string             `json:"previewId,omitempty"`
	Encoding  textenc.Encoding   `json:"encoding"`
	Result    *parser.CardResult `json:"result"`
}

// PreviewBank handles POST /api/import/bank/preview?format=TAG.
// Results with transactions are cached under the returned previewId for commit.
func (h *Handler) PreviewBank(w http.ResponseWriter, r *http.Request) {
	content, enc, ok := h.upload(w, r)
	if !ok {
		return
	}

	result := h.importer.PreviewBank(content, r.URL.Query().Get("format"))
	resp := bankPreviewResponse{Encoding: enc, Result: result}
	if len(result.Transactions) > 0 {
		resp.PreviewID = uuid.NewString()
		h.previews.SetDefault(resp.PreviewID, result)
	}

	logger.FromContext(r.Context()).Info("bank preview",
		"format", result.BankType, "encoding", enc, "transactions", len(result.Transactions), "errors", len(result.Errors))
	writeJSON(w, r, http.StatusOK, resp)
}

// PreviewCard handles POST /api/import/card/preview?format=TAG
func (h *Handler) PreviewCard(w http.ResponseWriter, r *http.Request) {
	content, enc, ok := h.upload(w, r)
	if !ok {
		return
	}

	result := h.importer.PreviewCard(content, r.URL.Query().Get("format"))
	resp := cardPreviewResponse{Encoding: enc, Result: result}
	if len(result.Transactions) > 0 {
		resp.PreviewID = uuid.NewString()
		h.previews.SetDefault(resp.PreviewID, result)
	}

	logger.FromContext(r.Context()).Info("card preview",
		"format", result.CardType, "encoding", enc, "transactions", len(result.Transactions), "errors", len(result.Errors))
	writeJSON(w, r, http.StatusOK, resp)
}

// Commit handles POST /api/import/commit/{previewId}. A preview can be
// committed once.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "previewId")
	cached, found := h.previews.Get(id)
	if !found {
		writeError(w, r, http.StatusNotFound, MsgPreviewNotFound)
		return
	}
	h.previews.Delete(id)

	switch result := cached.(type) {
	case *parser.BankResult:
		res, err := h.importer.CommitBank(r.Context(), result)
		if err != nil {
			importError(w, r, err)
			return
		}
		respondImport(w, r, res, res.Success)
	case *parser.CardResult:
		res, err := h.importer.CommitCard(r.Context(), result)
		if err != nil {
			importError(w, r, err)
			return
		}
		respondImport(w, r, res, res.Success)
	default:
		writeError(w, r, http.StatusNotFound, MsgPreviewNotFound)
	}
}

// ImportBank handles POST /api/import/bank?format=TAG
func (h *Handler) ImportBank(w http.ResponseWriter, r *http.Request) {
	content, _, ok := h.upload(w, r)
	if !ok {
		return
	}
	res, err := h.importer.ImportBank(r.Context(), content, r.URL.Query().Get("format"))
	if err != nil {
		importError(w, r, err)
		return
	}
	respondImport(w, r, res, res.Success)
}

// ImportCard handles POST /api/import/card?format=TAG
func (h *Handler) ImportCard(w http.ResponseWriter, r *http.Request) {
	content, _, ok := h.upload(w, r)
	if !ok {
		return
	}
	res, err := h.importer.ImportCard(r.Context(), content, r.URL.Query().Get("format"))
	if err != nil {
		importError(w, r, err)
		return
	}
	respondImport(w, r, res, res.Success)
}

// ListEntries handles GET /api/entries?from=YYYY-MM-DD&to=YYYY-MM-DD&type=income|expense|transfer
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		From: q.Get("from"),
		To:   q.Get("to"),
		Type: domain.TransactionType(q.Get("type")),
	}
	if !validFilter(filter) {
		writeError(w, r, http.StatusBadRequest, MsgInvalidFilter)
		return
	}

	entries, err := h.importer.ListEntries(r.Context(), filter)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to list entries", "err", err)
		writeError(w, r, http.StatusInternalServerError, "取引の取得に失敗しました")
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func validFilter(f store.Filter) bool {
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return false
		}
	}
	return f.Type == "" || domain.ValidateTransactionType(f.Type)
}

// upload reads the request file, writing the error response itself on failure
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) (string, textenc.Encoding, bool) {
	content, enc, err := h.readUpload(w, r)
	if err == nil {
		return content, enc, true
	}

	status := uploadStatus(err)
	msg := err.Error()
	switch {
	case status == http.StatusRequestEntityTooLarge:
		msg = MsgFileTooLarge
	case errors.Is(err, errNoFile):
		msg = MsgNoFile
	}
	writeError(w, r, status, msg)
	return "", "", false
}

// respondImport writes 200 for a successful import and 422 when the file
// could not be parsed
func respondImport(w http.ResponseWriter, r *http.Request, res any, success bool) {
	if !success {
		writeJSON(w, r, http.StatusUnprocessableEntity, res)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// importError maps importer errors: validation failures are 422, anything
// else is a storage failure.
func importError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, importer.ErrInvalidResult) {
		logger.FromContext(r.Context()).Warn("import rejected", "err", err)
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logger.FromContext(r.Context()).Error("import failed", "err", err)
	writeError(w, r, http.StatusInternalServerError, importer.MsgSaveFailed)
}
