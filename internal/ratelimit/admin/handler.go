package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"atelier/internal/audit"
	"atelier/internal/ratelimit/models"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/httputil"
	"atelier/pkg/platform/middleware/session"
)

// Blocker is the slice of the limiter the admin surface needs.
type Blocker interface {
	Block(ctx context.Context, ip, reason string, permanent bool) (*models.BlockRecord, error)
	Unblock(ctx context.Context, ip string) error
	ListBlocked(ctx context.Context) ([]*models.BlockRecord, error)
}

// Handler exposes manual IP block management to administrators.
type Handler struct {
	blocker  Blocker
	audits   *audit.Publisher
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(blocker Blocker, audits *audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		blocker:  blocker,
		audits:   audits,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) emit(r *http.Request, action audit.Action, detail string) {
	if h.audits == nil {
		return
	}
	actor := ""
	if identity, ok := session.Identity(r.Context()); ok {
		actor = identity.Username
	}
	h.audits.Emit(r.Context(), audit.Event{
		Action:  action,
		Actor:   actor,
		Success: true,
		Detail:  detail,
	})
}

// Routes mounts the block management endpoints. The caller wraps them in the
// admin session middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/blocks", h.listBlocks)
	r.Post("/blocks", h.createBlock)
	r.Delete("/blocks/{ip}", h.deleteBlock)
}

type blockRequest struct {
	IP        string `json:"ip" validate:"required,ip"`
	Reason    string `json:"reason" validate:"required,max=500"`
	Permanent bool   `json:"permanent"`
}

type blockListResponse struct {
	Blocks []*models.BlockRecord `json:"blocks"`
	Total  int                   `json:"total"`
}

func (h *Handler) listBlocks(w http.ResponseWriter, r *http.Request) {
	records, err := h.blocker.ListBlocked(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, blockListResponse{Blocks: records, Total: len(records)})
}

func (h *Handler) createBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "ip and reason are required, ip must be a valid address"))
		return
	}

	rec, err := h.blocker.Block(r.Context(), req.IP, req.Reason, req.Permanent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin blocked ip",
		"reason", req.Reason, "permanent", req.Permanent)
	h.emit(r, audit.ActionIPBlocked, req.Reason)
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if ip == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "ip is required"))
		return
	}

	if err := h.blocker.Unblock(r.Context(), ip); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin unblocked ip")
	h.emit(r, audit.ActionIPUnblocked, "")
	w.WriteHeader(http.StatusNoContent)
}
