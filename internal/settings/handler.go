// internal/settings/handler.go
package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service   *Service
	tokenHash string
}

// NewHandler serves the channel settings API. tokenHash is a HashToken
// encoding; when it is empty the routes are not authenticated.
func NewHandler(service *Service, tokenHash string) *Handler {
	return &Handler{service: service, tokenHash: tokenHash}
}

// Routes mounts under /settings.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requireAdmin)
	r.Get("/channels", h.HandleList)
	r.Put("/channels/{channel}", h.HandleEnable)
	r.Delete("/channels/{channel}", h.HandleDisable)
	return r
}

type channelState struct {
	Channel string `json:"channel"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	flags := h.service.Channels()
	out := make([]channelState, 0, len(flags))
	for _, name := range h.service.Gate().Names() {
		out = append(out, channelState{Channel: name, Enabled: flags[name]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	h.handleSet(w, r, true)
}

func (h *Handler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.handleSet(w, r, false)
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request, enabled bool) {
	channel := chi.URLParam(r, "channel")

	var err error
	if enabled {
		err = h.service.Enable(r.Context(), channel)
	} else {
		err = h.service.Disable(r.Context(), channel)
	}
	if errors.Is(err, ErrInvalidChannel) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, channelState{Channel: channel, Enabled: enabled})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.tokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		valid, err := VerifyToken(token, h.tokenHash)
		if err != nil || !valid {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
