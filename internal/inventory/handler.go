// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/{kind}/{id}", h.HandleGet)
	return r
}

type categoryRequest struct {
	Name              string `json:"name"`
	CheckinEmail      bool   `json:"checkin_email"`
	RequireAcceptance bool   `json:"require_acceptance"`
	UseDefaultEULA    bool   `json:"use_default_eula"`
	EULAText          string `json:"eula_text"`
}

type createRequest struct {
	Kind      string           `json:"kind"`
	Name      string           `json:"name"`
	Tag       string           `json:"asset_tag"`
	Serial    string           `json:"serial"`
	Model     string           `json:"model"`
	Seats     int              `json:"seats"`
	Username  string           `json:"username"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Email     string           `json:"email"`
	Superuser bool             `json:"superuser"`
	Category  *categoryRequest `json:"category"`
}

// maxSeats bounds the seats created by a single license request.
const maxSeats = 1000

type entityResponse struct {
	Ref        Ref  `json:"ref"`
	Entity     any  `json:"entity"`
	AssignedTo *Ref `json:"assigned_to,omitempty"`
	// Seats lists every seat created for a license, the first being Ref.
	Seats []Ref `json:"seats,omitempty"`
}

type referenced interface {
	Ref() Ref
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entities, err := req.build()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, entity := range entities {
		if err := h.catalog.Add(r.Context(), entity); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	first := entities[0].(referenced)
	resp := entityResponse{Ref: first.Ref(), Entity: first}
	if len(entities) > 1 || first.Ref().Kind == KindLicenseSeat {
		for _, entity := range entities {
			resp.Seats = append(resp.Seats, entity.(referenced).Ref())
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// build returns the entities to add; only licenses yield more than one.
func (req createRequest) build() ([]any, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	var category *Category
	if req.Category != nil {
		category = &Category{
			ID:                uuid.New(),
			Name:              req.Category.Name,
			CheckinEmail:      req.Category.CheckinEmail,
			RequireAcceptance: req.Category.RequireAcceptance,
			UseDefaultEULA:    req.Category.UseDefaultEULA,
			EULAText:          req.Category.EULAText,
		}
	}

	switch kind {
	case KindAccessory:
		a := NewAccessory(req.Name)
		a.Category = category
		return []any{a}, nil
	case KindAsset:
		var model *AssetModel
		if req.Model != "" || category != nil {
			model = NewAssetModel(req.Model, category)
		}
		a := NewAsset(req.Tag, req.Name, model)
		a.Serial = req.Serial
		return []any{a}, nil
	case KindComponent:
		c := NewComponent(req.Name)
		c.Serial = req.Serial
		c.Category = category
		return []any{c}, nil
	case KindLicenseSeat:
		seats := req.Seats
		if seats == 0 {
			seats = 1
		}
		if seats < 0 || seats > maxSeats {
			return nil, fmt.Errorf("seats must be between 1 and %d, got %d", maxSeats, req.Seats)
		}
		created := NewLicenseSeats(NewLicense(req.Name, seats))
		out := make([]any, len(created))
		for i, seat := range created {
			out[i] = seat
		}
		return out, nil
	case KindUser:
		if req.Username == "" {
			return nil, errors.New("username is required")
		}
		u := NewUser(req.Username, req.FirstName, req.LastName)
		u.Email = req.Email
		u.Superuser = req.Superuser
		return []any{u}, nil
	default:
		return []any{NewLocation(req.Name)}, nil
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid entity ID", http.StatusBadRequest)
		return
	}
	ref := Ref{Kind: kind, ID: id}

	if item, err := h.catalog.Checkoutable(r.Context(), ref); err == nil {
		resp := entityResponse{Ref: ref, Entity: item}
		if target, ok := h.catalog.Assignee(r.Context(), item); ok {
			assigned := target.Ref()
			resp.AssignedTo = &assigned
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	target, err := h.catalog.Target(r.Context(), ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entityResponse{Ref: ref, Entity: target})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
