package animals

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
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc, membersSvc))
		ar.Get("/", listAnimalsHandler(svc, membersSvc))

		ar.Get("/{animalID}", getAnimalHandler(svc, membersSvc))
		ar.Patch("/{animalID}", updateAnimalHandler(svc, membersSvc))
	})
}

type createAnimalRequest struct {
	TagNumber string `json:"tag_number"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD

	// Opcional: vacío => se clasifica por edad/sexo con las categorías de la granja.
	ProductionStatus string `json:"production_status"`
	HealthStatus     string `json:"health_status"`

	Notes string `json:"notes"`
}

type animalResponse struct {
	ID        string `json:"id"`
	FarmID    string `json:"farm_id"`
	TagNumber string `json:"tag_number"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"`

	ProductionStatus string `json:"production_status"`
	HealthStatus     string `json:"health_status"`

	ServiceDate         *string `json:"service_date,omitempty"`
	ExpectedCalvingDate *string `json:"expected_calving_date,omitempty"`
	DryOffDate          *string `json:"dry_off_date,omitempty"`
	LastCalvingDate     *string `json:"last_calving_date,omitempty"`
	LastMilkingDate     *string `json:"last_milking_date,omitempty"`

	DaysInMilk             int     `json:"days_in_milk"`
	CurrentDailyProduction float64 `json:"current_daily_production"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	TagNumber    *string `json:"tag_number"`
	Name         *string `json:"name"`
	Breed        *string `json:"breed"`
	Gender       *string `json:"gender"`
	BirthDate    *string `json:"birth_date"` // YYYY-MM-DD
	HealthStatus *string `json:"health_status"`
	Notes        *string `json:"notes"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description Registra un animal en la granja del token. Si production_status viene vacío, se clasifica por edad/sexo contra las categorías de la granja. Owner siempre puede; un miembro necesita scope `animals:write`.
// @Tags animals
// @Accept json
// @Produce json
// @Param payload body createAnimalRequest true "Datos del animal; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / birth_date inválido / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /animals [post]
func createAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeAnimalsWrite) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := time.Parse("2006-01-02", strings.TrimSpace(req.BirthDate))
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), claims.FarmID, CreateInput{
			TagNumber:        req.TagNumber,
			Name:             req.Name,
			Breed:            req.Breed,
			Gender:           req.Gender,
			BirthDate:        bd,
			ProductionStatus: req.ProductionStatus,
			HealthStatus:     req.HealthStatus,
			Notes:            req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Listar animales de la granja
// @Tags animals
// @Produce json
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /animals [get]
func listAnimalsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
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

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeAnimalsRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := svc.GetByID(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeAnimalsWrite) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		// Decodificamos a map primero para detectar presencia de birth_date
		// (null explícito vs campo ausente).
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateAnimalRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := PatchDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"), UpdateProfileInput{
			TagNumber:    req.TagNumber,
			Name:         req.Name,
			Breed:        req.Breed,
			Gender:       req.Gender,
			BirthDate:    bd,
			HealthStatus: req.HealthStatus,
			Notes:        req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case strings.Contains(strings.ToLower(err.Error()), "not found"):
				http.Error(w, "animal not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

// requireFarm corta con 401 si no hay claims con usuario y granja.
func requireFarm(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.FarmID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

// allowScope aplica el modelo de permisos:
// - owner de la granja: bypass
// - miembro: requiere membership activo con el scope pedido
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

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:                     a.ID,
		FarmID:                 a.FarmID,
		TagNumber:              a.TagNumber,
		Name:                   a.Name,
		Breed:                  a.Breed,
		Gender:                 string(a.Gender),
		BirthDate:              a.BirthDate.Format("2006-01-02"),
		ProductionStatus:       string(a.ProductionStatus),
		HealthStatus:           string(a.HealthStatus),
		ServiceDate:            dateString(a.ServiceDate),
		ExpectedCalvingDate:    dateString(a.ExpectedCalvingDate),
		DryOffDate:             dateString(a.DryOffDate),
		LastCalvingDate:        dateString(a.LastCalvingDate),
		LastMilkingDate:        dateString(a.LastMilkingDate),
		DaysInMilk:             a.DaysInMilk,
		CurrentDailyProduction: a.CurrentDailyProduction,
		Notes:                  a.Notes,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
