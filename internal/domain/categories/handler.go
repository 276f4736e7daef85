package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dairy-herd-service/internal/domain/members"
	"dairy-herd-service/internal/middleware"
	"dairy-herd-service/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service) {
	r.Route("/categories", func(cr chi.Router) {
		cr.Post("/", createCategoryHandler(svc, membersSvc))
		cr.Get("/", listCategoriesHandler(svc, membersSvc))
		cr.Patch("/{categoryID}", updateCategoryHandler(svc, membersSvc))
		cr.Delete("/{categoryID}", deleteCategoryHandler(svc, membersSvc))
	})
}

type characteristicsPayload struct {
	Lactating    bool `json:"lactating"`
	Pregnant     bool `json:"pregnant"`
	BreedingMale bool `json:"breeding_male"`
	GrowthPhase  bool `json:"growth_phase"`
}

type createCategoryRequest struct {
	Name             string                 `json:"name"`
	MinAgeDays       int                    `json:"min_age_days"`
	MaxAgeDays       *int                   `json:"max_age_days"` // null = sin tope
	Gender           *string                `json:"gender"`       // null = cualquier sexo
	ProductionStatus string                 `json:"production_status"`
	Characteristics  characteristicsPayload `json:"characteristics"`
	SortOrder        int                    `json:"sort_order"`
}

type categoryResponse struct {
	ID               string                 `json:"id"`
	FarmID           string                 `json:"farm_id"`
	Name             string                 `json:"name"`
	MinAgeDays       int                    `json:"min_age_days"`
	MaxAgeDays       *int                   `json:"max_age_days,omitempty"`
	Gender           *string                `json:"gender,omitempty"`
	ProductionStatus string                 `json:"production_status"`
	Characteristics  characteristicsPayload `json:"characteristics"`
	SortOrder        int                    `json:"sort_order"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type updateCategoryRequest struct {
	Name            *string                 `json:"name"`
	MinAgeDays      *int                    `json:"min_age_days"`
	MaxAgeDays      *int                    `json:"max_age_days"`
	Gender          *string                 `json:"gender"`
	Status          *string                 `json:"production_status"`
	Characteristics *characteristicsPayload `json:"characteristics"`
	SortOrder       *int                    `json:"sort_order"`
}

func createCategoryHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeCategoriesEdit) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), claims.FarmID, CreateInput{
			Name:             req.Name,
			MinAgeDays:       req.MinAgeDays,
			MaxAgeDays:       req.MaxAgeDays,
			Gender:           req.Gender,
			ProductionStatus: req.ProductionStatus,
			Characteristics: Characteristics{
				Lactating:    req.Characteristics.Lactating,
				Pregnant:     req.Characteristics.Pregnant,
				BreedingMale: req.Characteristics.BreedingMale,
				GrowthPhase:  req.Characteristics.GrowthPhase,
			},
			SortOrder: req.SortOrder,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toCategoryResponse(c))
	}
}

func listCategoriesHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeAnimalsRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByFarm(r.Context(), claims.FarmID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]categoryResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCategoryResponse(c))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func updateCategoryHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeCategoriesEdit) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		// max_age_days y gender aceptan null explícito (= limpiar);
		// presencia detectada sobre el map crudo.
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateCategoryRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		in := UpdateInput{
			Name:       req.Name,
			MinAgeDays: req.MinAgeDays,
			Status:     req.Status,
			SortOrder:  req.SortOrder,
		}
		if v, exists := raw["max_age_days"]; exists {
			if string(v) == "null" {
				in.ClearMaxAge = true
			} else {
				in.MaxAgeDays = req.MaxAgeDays
			}
		}
		if v, exists := raw["gender"]; exists {
			if string(v) == "null" {
				in.ClearGender = true
			} else {
				in.Gender = req.Gender
			}
		}
		if req.Characteristics != nil {
			in.Characteristics = &Characteristics{
				Lactating:    req.Characteristics.Lactating,
				Pregnant:     req.Characteristics.Pregnant,
				BreedingMale: req.Characteristics.BreedingMale,
				GrowthPhase:  req.Characteristics.GrowthPhase,
			}
		}

		updated, err := svc.Update(r.Context(), claims.FarmID, chi.URLParam(r, "categoryID"), in)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case strings.Contains(strings.ToLower(err.Error()), "not found"):
				http.Error(w, "category not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toCategoryResponse(updated))
	}
}

func deleteCategoryHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeCategoriesEdit) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.Delete(r.Context(), claims.FarmID, chi.URLParam(r, "categoryID")); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func requireFarm(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.FarmID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func allowScope(r *http.Request, claims auth.Claims, membersSvc *members.Service, scope members.Scope) bool {
	if claims.Role == auth.RoleOwner {
		return true
	}
	m, err := membersSvc.GetActiveMembership(r.Context(), claims.FarmID, claims.UserID)
	if err != nil {
		return false
	}
	return members.HasScope(m, scope)
}

func toCategoryResponse(c Category) categoryResponse {
	var gender *string
	if c.Gender != nil {
		g := string(*c.Gender)
		gender = &g
	}
	return categoryResponse{
		ID:               c.ID,
		FarmID:           c.FarmID,
		Name:             c.Name,
		MinAgeDays:       c.MinAgeDays,
		MaxAgeDays:       c.MaxAgeDays,
		Gender:           gender,
		ProductionStatus: string(c.ProductionStatus),
		Characteristics: characteristicsPayload{
			Lactating:    c.Characteristics.Lactating,
			Pregnant:     c.Characteristics.Pregnant,
			BreedingMale: c.Characteristics.BreedingMale,
			GrowthPhase:  c.Characteristics.GrowthPhase,
		},
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// writeJSON duplicado intencionalmente por módulo (misma razón que animals).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
