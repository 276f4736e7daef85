package settings

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
	r.Route("/settings/breeding", func(sr chi.Router) {
		sr.Get("/", getSettingsHandler(svc, membersSvc))
		sr.Put("/", upsertSettingsHandler(svc, membersSvc))
	})
}

type settingsPayload struct {
	MinimumBreedingAgeMonths int `json:"minimum_breeding_age_months"`
	DefaultGestationDays     int `json:"default_gestation_days"`
	DaysPregnantAtDryoff     int `json:"days_pregnant_at_dryoff"`
	PostpartumDelayDays      int `json:"postpartum_delay_days"`
	HeatCycleDays            int `json:"heat_cycle_days"`
	PregnancyCheckDays       int `json:"pregnancy_check_days"`
	MissedHeatAlertDays      int `json:"missed_heat_alert_days"`
	HeatRetryDays            int `json:"heat_retry_days"`
	DiagnosisIntervalDays    int `json:"diagnosis_interval_days"`

	CostPerAI float64 `json:"cost_per_ai"`

	AlertTypes []string `json:"alert_types"`
}

type settingsResponse struct {
	FarmID string `json:"farm_id"`
	settingsPayload
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// getSettingsHandler godoc
// @Summary Settings reproductivos de la granja
// @Description Devuelve los settings guardados, o los defaults si la granja no configuró nada todavía.
// @Tags settings
// @Produce json
// @Success 200 {object} settingsResponse
// @Failure 401 {string} string "unauthorized"
// @Router /settings/breeding [get]
func getSettingsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeBreedingRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		s, err := svc.Get(r.Context(), claims.FarmID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toSettingsResponse(s))
	}
}

// upsertSettingsHandler godoc
// @Summary Guardar settings reproductivos
// @Description Valida todos los rangos por campo y los invariantes cruzados (secado antes del parto, periodo seco 30-90 días) antes de persistir. Requiere owner o scope `settings:edit`.
// @Tags settings
// @Accept json
// @Produce json
// @Param payload body settingsPayload true "Settings completos (PUT, no parcial)"
// @Success 200 {object} settingsResponse
// @Failure 400 {string} string "campo fuera de rango (nombrado en el mensaje)"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /settings/breeding [put]
func upsertSettingsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if !allowScope(r, claims, membersSvc, members.ScopeSettingsEdit) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req settingsPayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		alertTypes := make([]AlertType, 0, len(req.AlertTypes))
		for _, a := range req.AlertTypes {
			alertTypes = append(alertTypes, AlertType(strings.TrimSpace(a)))
		}

		saved, err := svc.Upsert(r.Context(), claims.FarmID, BreedingSettings{
			MinimumBreedingAgeMonths: req.MinimumBreedingAgeMonths,
			DefaultGestationDays:     req.DefaultGestationDays,
			DaysPregnantAtDryoff:     req.DaysPregnantAtDryoff,
			PostpartumDelayDays:      req.PostpartumDelayDays,
			HeatCycleDays:            req.HeatCycleDays,
			PregnancyCheckDays:       req.PregnancyCheckDays,
			MissedHeatAlertDays:      req.MissedHeatAlertDays,
			HeatRetryDays:            req.HeatRetryDays,
			DiagnosisIntervalDays:    req.DiagnosisIntervalDays,
			CostPerAI:                req.CostPerAI,
			AlertTypes:               alertTypes,
		})
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) || errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toSettingsResponse(saved))
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

func toSettingsResponse(s BreedingSettings) settingsResponse {
	alerts := make([]string, 0, len(s.AlertTypes))
	for _, a := range s.AlertTypes {
		alerts = append(alerts, string(a))
	}

	resp := settingsResponse{
		FarmID: s.FarmID,
		settingsPayload: settingsPayload{
			MinimumBreedingAgeMonths: s.MinimumBreedingAgeMonths,
			DefaultGestationDays:     s.DefaultGestationDays,
			DaysPregnantAtDryoff:     s.DaysPregnantAtDryoff,
			PostpartumDelayDays:      s.PostpartumDelayDays,
			HeatCycleDays:            s.HeatCycleDays,
			PregnancyCheckDays:       s.PregnancyCheckDays,
			MissedHeatAlertDays:      s.MissedHeatAlertDays,
			HeatRetryDays:            s.HeatRetryDays,
			DiagnosisIntervalDays:    s.DiagnosisIntervalDays,
			CostPerAI:                s.CostPerAI,
			AlertTypes:               alerts,
		},
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// writeJSON duplicado intencionalmente por módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
