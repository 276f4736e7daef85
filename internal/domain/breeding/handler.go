package breeding

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/members"
	"dairy-herd-service/internal/middleware"
	"dairy-herd-service/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service) {
	r.Route("/animals/{animalID}/breeding", func(br chi.Router) {
		br.Get("/eligibility", eligibilityHandler(svc, membersSvc))
		br.Get("/dry-off-status", dryOffStatusHandler(svc, membersSvc))
		br.Get("/schedule", scheduleHandler(svc, membersSvc))
		br.Get("/classification", classificationHandler(svc, membersSvc))

		br.Post("/events", recordEventHandler(svc, membersSvc))
		br.Get("/events", listEventsHandler(svc, membersSvc))

		// Comando directo de secado (lactating -> dry).
		br.Post("/dry-off", dryOffHandler(svc, membersSvc))
	})
}

type eligibilityResponse struct {
	CanBreed         bool     `json:"can_breed"`
	Blockers         []string `json:"blockers"`
	Reasons          []string `json:"reasons"`
	Recommendations  []string `json:"recommendations"`
	NextBreedingDate *string  `json:"next_breeding_date,omitempty"` // YYYY-MM-DD
}

type dryOffStatusResponse struct {
	ShowDryOffButton     bool    `json:"show_dry_off_button"`
	ShouldDryOff         bool    `json:"should_dry_off"`
	DaysPregnant         int     `json:"days_pregnant"`
	DaysUntilDryOffAlert int     `json:"days_until_dry_off_alert"`
	ButtonStartsInDays   int     `json:"button_starts_in_days"`
	ExpectedDryOffDate   *string `json:"expected_dry_off_date,omitempty"`
	Reason               string  `json:"reason"`
}

type scheduleResponse struct {
	ServiceDate         *string `json:"service_date,omitempty"`
	ExpectedCalvingDate *string `json:"expected_calving_date,omitempty"`
	ExpectedDryOffDate  *string `json:"expected_dry_off_date,omitempty"`
	NextHeatDate        *string `json:"next_heat_date,omitempty"`
	PregnancyCheckDate  *string `json:"pregnancy_check_date,omitempty"`
	DaysPregnant        int     `json:"days_pregnant"`
}

type classificationResponse struct {
	ProductionStatus string `json:"production_status"`
	CategoryID       string `json:"category_id,omitempty"`
	CategoryName     string `json:"category_name,omitempty"`
	AgeDays          int    `json:"age_days"`
}

type recordEventRequest struct {
	Type      string          `json:"type" enums:"SERVICE,CALVING,HEAT,DRY_OFF,PREGNANCY_CHECK"`
	EventDate string          `json:"event_date"` // YYYY-MM-DD
	SireTag   string          `json:"sire_tag"`
	Result    string          `json:"result"`
	Notes     string          `json:"notes"`
	Details   json.RawMessage `json:"details"` // payload tipado según type
}

type eventResponse struct {
	ID         string          `json:"id"`
	AnimalID   string          `json:"animal_id"`
	Type       EventType       `json:"type"`
	EventDate  string          `json:"event_date"`
	RecordedAt time.Time       `json:"recorded_at"`
	SireTag    string          `json:"sire_tag,omitempty"`
	Result     EventResult     `json:"result,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type dryOffRequest struct {
	DryOffDate string `json:"dry_off_date"` // YYYY-MM-DD opcional, default hoy
}

// eligibilityHandler godoc
// @Summary Evaluar elegibilidad de servicio
// @Description Corre la cadena de reglas de elegibilidad (sexo, edad mínima, status productivo, descanso postparto, sanidad, preñez) contra el animal, los settings de la granja y su historial. canBreed=false no es un error: los motivos van en blockers.
// @Tags breeding
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} eligibilityResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID}/breeding/eligibility [get]
func eligibilityHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		elig, err := svc.EvaluateAnimal(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toEligibilityResponse(elig))
	}
}

func dryOffStatusHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		st, err := svc.DryOffStatusFor(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, dryOffStatusResponse{
			ShowDryOffButton:     st.ShowDryOffButton,
			ShouldDryOff:         st.ShouldDryOff,
			DaysPregnant:         st.DaysPregnant,
			DaysUntilDryOffAlert: st.DaysUntilDryOffAlert,
			ButtonStartsInDays:   st.ButtonStartsInDays,
			ExpectedDryOffDate:   isoDate(st.ExpectedDryOffDate),
			Reason:               st.Reason,
		})
	}
}

func scheduleHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		sch, err := svc.ScheduleFor(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, scheduleResponse{
			ServiceDate:         isoDate(sch.ServiceDate),
			ExpectedCalvingDate: isoDate(sch.ExpectedCalvingDate),
			ExpectedDryOffDate:  isoDate(sch.ExpectedDryOffDate),
			NextHeatDate:        isoDate(sch.NextHeatDate),
			PregnancyCheckDate:  isoDate(sch.PregnancyCheckDate),
			DaysPregnant:        sch.DaysPregnant,
		})
	}
}

func classificationHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeAnimalsRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		c, err := svc.ClassifyAnimal(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"))
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, classificationResponse{
			ProductionStatus: string(c.Status),
			CategoryID:       c.CategoryID,
			CategoryName:     c.CategoryName,
			AgeDays:          c.AgeDays,
		})
	}
}

// recordEventHandler godoc
// @Summary Registrar evento reproductivo
// @Description Registra un evento (SERVICE/CALVING/HEAT/DRY_OFF/PREGNANCY_CHECK) y aplica la transición de estado correspondiente. SERVICE pasa primero por el gate de elegibilidad: si está bloqueado responde 409 con la evaluación completa.
// @Tags breeding
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body recordEventRequest true "Evento; event_date en formato YYYY-MM-DD"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / event_date inválido / details no corresponden al tipo"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {object} eligibilityResponse "animal no elegible o transición inválida"
// @Router /animals/{animalID}/breeding/events [post]
func recordEventHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRecord) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req recordEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		eventDate, err := ParseDate(strings.TrimSpace(req.EventDate))
		if err != nil {
			http.Error(w, "event_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		e, err := svc.RecordEvent(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"), RecordEventInput{
			Type:      EventType(strings.TrimSpace(req.Type)),
			EventDate: eventDate,
			SireTag:   req.SireTag,
			Result:    EventResult(strings.TrimSpace(req.Result)),
			Notes:     req.Notes,
			Details:   req.Details,
		})
		if err != nil {
			writeBreedingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

func listEventsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListEvents(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// dryOffHandler godoc
// @Summary Secar un animal
// @Description Aplica la transición lactating -> dry: setea dry_off_date y last_milking_date, resetea días en leche y producción diaria, y limpia service_date. Un animal que no está lactating responde 409.
// @Tags breeding
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body dryOffRequest false "dry_off_date opcional (default hoy)"
// @Success 200 {object} map[string]any
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {string} string "transición inválida o estado cambiado concurrentemente"
// @Router /animals/{animalID}/breeding/dry-off [post]
func dryOffHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRecord) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var dryOffDate *time.Time
		if r.Body != nil && r.ContentLength != 0 {
			var req dryOffRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if strings.TrimSpace(req.DryOffDate) != "" {
				t, err := ParseDate(strings.TrimSpace(req.DryOffDate))
				if err != nil {
					http.Error(w, "dry_off_date must be YYYY-MM-DD", http.StatusBadRequest)
					return
				}
				dryOffDate = &t
			}
		}

		a, err := svc.DryOff(r.Context(), claims.FarmID, chi.URLParam(r, "animalID"), dryOffDate)
		if err != nil {
			writeBreedingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":                a.ID,
			"production_status": string(a.ProductionStatus),
			"dry_off_date":      isoDate(a.DryOffDate),
			"last_milking_date": isoDate(a.LastMilkingDate),
		})
	}
}

func writeBreedingError(w http.ResponseWriter, err error) {
	var notEligible *NotEligibleError
	if errors.As(err, &notEligible) {
		writeJSON(w, http.StatusConflict, toEligibilityResponse(notEligible.Eligibility))
		return
	}

	var badTransition *InvalidTransitionError
	switch {
	case errors.As(err, &badTransition):
		http.Error(w, badTransition.Error(), http.StatusConflict)
	case errors.Is(err, animals.ErrStaleStatus):
		http.Error(w, "production status changed, retry", http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case isValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case strings.Contains(strings.ToLower(err.Error()), "not found"):
		http.Error(w, "animal not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=SERVICE,CALVING
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	// from/to YYYY-MM-DD
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := ParseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := ParseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = &t
	}

	return filter, nil
}

func toEligibilityResponse(e Eligibility) eligibilityResponse {
	return eligibilityResponse{
		CanBreed:         e.CanBreed,
		Blockers:         emptyIfNil(e.Blockers),
		Reasons:          emptyIfNil(e.Reasons),
		Recommendations:  emptyIfNil(e.Recommendations),
		NextBreedingDate: isoDate(e.NextBreedingDate),
	}
}

func toEventResponse(e BreedingEvent) eventResponse {
	return eventResponse{
		ID:         e.ID,
		AnimalID:   e.AnimalID,
		Type:       e.Type,
		EventDate:  FormatDate(e.EventDate),
		RecordedAt: e.RecordedAt,
		SireTag:    e.SireTag,
		Result:     e.Result,
		Notes:      e.Notes,
		Details:    e.Details,
	}
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
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

// writeJSON duplicado intencionalmente por módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
