package members

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dairy-herd-service/internal/middleware"
	"dairy-herd-service/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/members", func(mr chi.Router) {
		// Invitar solo puede el owner de la granja.
		mr.Post("/invitations", inviteHandler(svc))
		mr.Post("/invitations/{membershipID}/accept", acceptHandler(svc))
		mr.Post("/{membershipID}/revoke", revokeHandler(svc))
		mr.Get("/", listFarmMembersHandler(svc))
	})

	// Membresías del usuario autenticado (incluye invitaciones pendientes).
	r.Get("/me/memberships", listMyMembershipsHandler(svc))
}

type inviteRequest struct {
	MemberUserID string   `json:"member_user_id"`
	Scopes       []string `json:"scopes"` // vacío = default de solo lectura
}

type membershipResponse struct {
	ID            string     `json:"id"`
	FarmID        string     `json:"farm_id"`
	InviterUserID string     `json:"inviter_user_id"`
	MemberUserID  string     `json:"member_user_id"`
	Scopes        []Scope    `json:"scopes"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

func inviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req inviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scopes := make([]Scope, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			scopes = append(scopes, Scope(s))
		}

		m, err := svc.Invite(r.Context(), InviteInput{
			FarmID:        claims.FarmID,
			InviterUserID: claims.UserID,
			MemberUserID:  req.MemberUserID,
			Scopes:        scopes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrPlanLimited):
				http.Error(w, err.Error(), http.StatusPaymentRequired)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toMembershipResponse(m))
	}
}

func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Accept(r.Context(), chi.URLParam(r, "membershipID"), claims.UserID)
		if err != nil {
			writeMembershipError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		m, err := svc.Revoke(r.Context(), chi.URLParam(r, "membershipID"), claims.UserID)
		if err != nil {
			writeMembershipError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

func listFarmMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireFarm(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByFarm(r.Context(), claims.FarmID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]membershipResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMembershipResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listMyMembershipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByMember(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]membershipResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMembershipResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeMembershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "membership not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
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

func toMembershipResponse(m Membership) membershipResponse {
	return membershipResponse{
		ID:            m.ID,
		FarmID:        m.FarmID,
		InviterUserID: m.InviterUserID,
		MemberUserID:  m.MemberUserID,
		Scopes:        m.Scopes,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		RevokedAt:     m.RevokedAt,
	}
}

// writeJSON duplicado intencionalmente por módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
