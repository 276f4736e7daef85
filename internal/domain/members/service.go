package members

import (
	"context"
	"errors"
	"strings"
	"time"

	"dairy-herd-service/internal/ports/billing"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
	ErrPlanLimited  = errors.New("plan does not include team members")
)

type Service struct {
	repo  Repository
	plans billing.PlanResolver
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// SetPlanResolver es opcional: sin resolver no se gatea por plan.
func (s *Service) SetPlanResolver(p billing.PlanResolver) {
	s.plans = p
}

type InviteInput struct {
	FarmID        string
	InviterUserID string
	MemberUserID  string
	Scopes        []Scope
}

func (s *Service) Invite(ctx context.Context, in InviteInput) (Membership, error) {
	farmID := strings.TrimSpace(in.FarmID)
	inviterID := strings.TrimSpace(in.InviterUserID)
	memberID := strings.TrimSpace(in.MemberUserID)

	if farmID == "" || inviterID == "" || memberID == "" {
		return Membership{}, ErrInvalidInput
	}
	if inviterID == memberID {
		return Membership{}, ErrInvalidInput
	}

	if s.plans != nil {
		ok, err := s.plans.HasFeature(ctx, farmID, billing.FeatureTeamMembers)
		if err != nil {
			return Membership{}, err
		}
		if !ok {
			return Membership{}, ErrPlanLimited
		}
	}

	// Scopes: si viene vacío, default de solo lectura.
	// Si viene con valores, validación estricta.
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeAnimalsRead, ScopeBreedingRead}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Membership{}, err
		}
		if len(scopes) == 0 {
			return Membership{}, ErrInvalidInput
		}
	}

	now := s.now()

	// Re-invitar actualiza el membership vigente en vez de duplicarlo.
	existing, allMatches, err := s.findLatestMatch(ctx, farmID, memberID)
	if err == nil && existing.ID != "" {
		if existing.Status != StatusRevoked {
			_ = s.revokeOtherMatches(ctx, existing.ID, allMatches, now)

			existing.Scopes = scopes
			existing.UpdatedAt = now

			if err := s.repo.Update(ctx, existing); err != nil {
				return Membership{}, err
			}
			return existing, nil
		}
	}

	m := Membership{
		ID:            uuid.NewString(),
		FarmID:        farmID,
		InviterUserID: inviterID,
		MemberUserID:  memberID,
		Scopes:        scopes,
		Status:        StatusInvited,
		CreatedAt:     now,
		UpdatedAt:     now,
		RevokedAt:     nil,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Membership{}, err
	}
	return m, nil
}

func (s *Service) Accept(ctx context.Context, membershipID, memberUserID string) (Membership, error) {
	membershipID = strings.TrimSpace(membershipID)
	memberUserID = strings.TrimSpace(memberUserID)

	if membershipID == "" || memberUserID == "" {
		return Membership{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return Membership{}, ErrNotFound
	}

	if m.MemberUserID != memberUserID {
		return Membership{}, ErrForbidden
	}
	if m.Status == StatusRevoked {
		return Membership{}, ErrBadState
	}

	// Idempotente
	if m.Status == StatusActive {
		return m, nil
	}
	if m.Status != StatusInvited {
		return Membership{}, ErrBadState
	}

	m.Status = StatusActive
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Membership{}, err
	}
	return m, nil
}

func (s *Service) Revoke(ctx context.Context, membershipID, inviterUserID string) (Membership, error) {
	membershipID = strings.TrimSpace(membershipID)
	inviterUserID = strings.TrimSpace(inviterUserID)

	if membershipID == "" || inviterUserID == "" {
		return Membership{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return Membership{}, ErrNotFound
	}

	if m.InviterUserID != inviterUserID {
		return Membership{}, ErrForbidden
	}

	// Idempotente
	if m.Status == StatusRevoked {
		return m, nil
	}

	now := s.now()
	m.Status = StatusRevoked
	m.UpdatedAt = now
	m.RevokedAt = &now

	if err := s.repo.Update(ctx, m); err != nil {
		return Membership{}, err
	}
	return m, nil
}

func (s *Service) GetActiveMembership(ctx context.Context, farmID, memberUserID string) (Membership, error) {
	return s.repo.GetActiveMembership(ctx, farmID, memberUserID)
}

func (s *Service) ListByFarm(ctx context.Context, farmID string) ([]Membership, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByFarm(ctx, farmID)
}

func (s *Service) ListByMember(ctx context.Context, memberUserID string) ([]Membership, error) {
	memberUserID = strings.TrimSpace(memberUserID)
	if memberUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMember(ctx, memberUserID)
}

// HasScope valida si el membership incluye un scope.
func HasScope(m Membership, scope Scope) bool {
	for _, s := range m.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, farmID, memberID string) (Membership, []Membership, error) {
	items, err := s.repo.ListByFarm(ctx, farmID)
	if err != nil {
		return Membership{}, nil, err
	}

	matches := make([]Membership, 0)
	var winner Membership
	hasWinner := false

	for _, m := range items {
		if m.FarmID != farmID || m.MemberUserID != memberID {
			continue
		}
		matches = append(matches, m)

		if !hasWinner || m.UpdatedAt.After(winner.UpdatedAt) {
			winner = m
			hasWinner = true
		}
	}

	if !hasWinner {
		return Membership{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Membership, now time.Time) error {
	for _, m := range matches {
		if m.ID == "" || m.ID == winnerID {
			continue
		}
		if m.Status == StatusRevoked {
			continue
		}
		m.Status = StatusRevoked
		m.UpdatedAt = now
		m.RevokedAt = &now
		_ = s.repo.Update(ctx, m) // best-effort
	}
	return nil
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeAnimalsRead:    {},
		ScopeAnimalsWrite:   {},
		ScopeBreedingRead:   {},
		ScopeBreedingRecord: {},
		ScopeCategoriesEdit: {},
		ScopeSettingsEdit:   {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
