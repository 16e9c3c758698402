package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/service"
)

type CartHandler struct {
	svc *service.CartService
	log *slog.Logger
}

func NewCartHandler(svc *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

// NewRouter assembles the full HTTP surface:
//
//	GET/POST/DELETE /cart        bearer-authenticated, keyed by user id
//	GET/POST/DELETE /cart/guest  unauthenticated, keyed by sessionId
//	GET /health
func NewRouter(h *CartHandler, verifier TokenVerifier, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/guest", h.GetGuestCart)
		r.Post("/guest", h.SaveGuestCart)
		r.Delete("/guest", h.ClearGuestCart)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(verifier))
			r.Get("/", h.GetCart)
			r.Post("/", h.ReplaceCart)
			r.Delete("/", h.ClearCart)
		})
	})

	return otelhttp.NewHandler(r, "cart-server")
}

type itemsDTO struct {
	Items []domain.CartItem `json:"items"`
}

type guestSaveRequestDTO struct {
	Items     []domain.CartItem `json:"items"`
	SessionID string            `json:"sessionId"`
}

type guestSaveResponseDTO struct {
	Success bool     `json:"success"`
	Cart    itemsDTO `json:"cart"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.svc.Get(r.Context(), domain.UserOwner(userID))
	if err != nil {
		h.log.Error("get cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, itemsDTO{Items: cart.Items})
}

func (h *CartHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req itemsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items, err := domain.NormalizeItems(req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_items", "item price must be non-negative")
		return
	}

	cart, err := h.svc.Replace(r.Context(), domain.UserOwner(userID), items)
	if err != nil {
		h.log.Error("replace cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save cart")
		return
	}

	respondJSON(w, http.StatusOK, itemsDTO{Items: cart.Items})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.svc.Clear(r.Context(), domain.UserOwner(userID)); err != nil {
		h.log.Error("clear cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) GetGuestCart(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "sessionId is required")
		return
	}

	cart, err := h.svc.Get(r.Context(), domain.GuestOwner(sessionID))
	if err != nil {
		h.log.Error("get guest cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, itemsDTO{Items: cart.Items})
}

func (h *CartHandler) SaveGuestCart(w http.ResponseWriter, r *http.Request) {
	var req guestSaveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "sessionId is required")
		return
	}

	items, err := domain.NormalizeItems(req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_items", "item price must be non-negative")
		return
	}

	// Replace no-ops on an empty guest list and echoes the stored cart,
	// so a transient empty save never destroys a real one.
	cart, err := h.svc.Replace(r.Context(), domain.GuestOwner(sessionID), items)
	if err != nil {
		h.log.Error("save guest cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save cart")
		return
	}

	respondJSON(w, http.StatusOK, guestSaveResponseDTO{
		Success: true,
		Cart:    itemsDTO{Items: cart.Items},
	})
}

func (h *CartHandler) ClearGuestCart(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "sessionId is required")
		return
	}

	if err := h.svc.DeleteGuest(r.Context(), sessionID); err != nil {
		h.log.Error("clear guest cart failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Warn("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
