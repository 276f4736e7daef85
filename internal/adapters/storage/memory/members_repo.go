package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dairy-herd-service/internal/domain/members"
)

type membershipRepo struct {
	mu   sync.RWMutex
	byID map[string]members.Membership
}

func NewMembershipRepo() members.Repository {
	return &membershipRepo{
		byID: make(map[string]members.Membership),
	}
}

func (r *membershipRepo) Create(ctx context.Context, m members.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("membership id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("membership already exists")
	}
	r.byID[m.ID] = cloneMembership(m)
	return nil
}

func (r *membershipRepo) Update(ctx context.Context, m members.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return ErrNotFound
	}
	r.byID[m.ID] = cloneMembership(m)
	return nil
}

func (r *membershipRepo) GetByID(ctx context.Context, id string) (members.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return members.Membership{}, ErrNotFound
	}
	return cloneMembership(m), nil
}

func (r *membershipRepo) ListByFarm(ctx context.Context, farmID string) ([]members.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Membership, 0)
	for _, m := range r.byID {
		if m.FarmID == farmID {
			out = append(out, cloneMembership(m))
		}
	}
	sortMemberships(out)
	return out, nil
}

func (r *membershipRepo) ListByMember(ctx context.Context, memberUserID string) ([]members.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Membership, 0)
	for _, m := range r.byID {
		if m.MemberUserID == memberUserID {
			out = append(out, cloneMembership(m))
		}
	}
	sortMemberships(out)
	return out, nil
}

func (r *membershipRepo) GetActiveMembership(ctx context.Context, farmID, memberUserID string) (members.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.FarmID == farmID && m.MemberUserID == memberUserID && m.Status == members.StatusActive {
			return cloneMembership(m), nil
		}
	}
	return members.Membership{}, ErrNotFound
}

func sortMemberships(ms []members.Membership) {
	sort.Slice(ms, func(i, j int) bool {
		return ms[i].CreatedAt.Before(ms[j].CreatedAt)
	})
}

// cloneMembership copia el slice de scopes para que el caller no pueda
// mutar lo guardado.
func cloneMembership(m members.Membership) members.Membership {
	out := m
	out.Scopes = append([]members.Scope(nil), m.Scopes...)
	return out
}
