package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fanclubkz/consultant/internal/domain"
	"github.com/fanclubkz/consultant/internal/store"
)

// ClubsHandler serves the club read API.
type ClubsHandler struct {
	repo store.Repository
}

// NewClubsHandler creates the clubs handler.
func NewClubsHandler(repo store.Repository) *ClubsHandler {
	return &ClubsHandler{repo: repo}
}

type clubResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	City           string `json:"city"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Activities     string `json:"activities,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	Tags           string `json:"tags,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

func toClubResponse(club *domain.ClubRecord) clubResponse {
	return clubResponse{
		ID:             club.ID,
		Name:           club.Name,
		Description:    club.Description,
		Category:       club.Category,
		City:           club.City,
		Email:          club.Email,
		Phone:          club.Phone,
		Address:        club.Address,
		Activities:     club.Activities,
		TargetAudience: club.TargetAudience,
		Tags:           club.Tags,
		CreatedAt:      club.CreatedAt.Unix(),
	}
}

// HandleSearch handles GET /api/clubs.
func (h *ClubsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	clubs, err := h.repo.SearchClubs(r.Context(), store.SearchFilter{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Limit:    limit,
	})
	if err != nil {
		slog.Error("club search failed", "error", err)
		Error(w, http.StatusInternalServerError, "club search failed")
		return
	}

	out := make([]clubResponse, 0, len(clubs))
	for _, club := range clubs {
		out = append(out, toClubResponse(club))
	}
	JSON(w, http.StatusOK, map[string]any{"clubs": out, "count": len(out)})
}

// HandleGet handles GET /api/clubs/{id}.
func (h *ClubsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	club, err := h.repo.GetClub(r.Context(), id)
	if err != nil {
		slog.Error("club lookup failed", "club_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "club lookup failed")
		return
	}
	if club == nil {
		Error(w, http.StatusNotFound, "club not found")
		return
	}
	JSON(w, http.StatusOK, toClubResponse(club))
}

// RegisterRoutes registers the club read API.
func (h *ClubsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/clubs", func(r chi.Router) {
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
	})
}
