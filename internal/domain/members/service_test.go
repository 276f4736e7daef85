package members

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Membership
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Membership{}}
}

func (r *testRepo) Create(ctx context.Context, m Membership) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Membership) error {
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Membership, error) {
	m, ok := r.byID[id]
	if !ok {
		return Membership{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) ListByFarm(ctx context.Context, farmID string) ([]Membership, error) {
	out := make([]Membership, 0)
	for _, m := range r.byID {
		if m.FarmID == farmID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListByMember(ctx context.Context, memberUserID string) ([]Membership, error) {
	out := make([]Membership, 0)
	for _, m := range r.byID {
		if m.MemberUserID == memberUserID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) GetActiveMembership(ctx context.Context, farmID, memberUserID string) (Membership, error) {
	for _, m := range r.byID {
		if m.FarmID == farmID && m.MemberUserID == memberUserID && m.Status == StatusActive {
			return m, nil
		}
	}
	return Membership{}, errRepoNotFound
}

type stubPlans struct {
	allowed bool
}

func (p stubPlans) HasFeature(ctx context.Context, farmID, feature string) (bool, error) {
	return p.allowed, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Invite_DefaultScopes_WhenEmpty(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if m.Status != StatusInvited {
		t.Fatalf("expected invited, got %s", m.Status)
	}
	if len(m.Scopes) != 2 || m.Scopes[0] != ScopeAnimalsRead || m.Scopes[1] != ScopeBreedingRead {
		t.Fatalf("expected read-only defaults, got %v", m.Scopes)
	}
}

func TestService_Invite_RejectsUnknownScope(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
		Scopes:        []Scope{ScopeAnimalsRead, "animals:admin"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_SelfInviteRejected(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "owner-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_ReinviteUpdatesExisting(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	first, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	second, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
		Scopes:        []Scope{ScopeAnimalsRead, ScopeBreedingRecord},
	})
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same membership updated, got %s vs %s", first.ID, second.ID)
	}
	if len(second.Scopes) != 2 || second.Scopes[1] != ScopeBreedingRecord {
		t.Fatalf("expected scopes replaced, got %v", second.Scopes)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected single membership, got %d", len(repo.byID))
	}
}

func TestService_Invite_PlanGate(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.SetPlanResolver(stubPlans{allowed: false})

	_, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
	})
	if !errors.Is(err, ErrPlanLimited) {
		t.Fatalf("expected ErrPlanLimited, got %v", err)
	}

	svc.SetPlanResolver(stubPlans{allowed: true})
	if _, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
	}); err != nil {
		t.Fatalf("expected invite allowed, got %v", err)
	}
}

func TestService_AcceptRevokeFlow(t *testing.T) {
	svc := NewService(newTestRepo())

	m, _ := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		InviterUserID: "owner-1",
		MemberUserID:  "worker-1",
	})

	// Aceptar solo puede el invitado.
	if _, err := svc.Accept(context.Background(), m.ID, "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	accepted, err := svc.Accept(context.Background(), m.ID, "worker-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusActive {
		t.Fatalf("expected active, got %s", accepted.Status)
	}

	// Accept es idempotente.
	if _, err := svc.Accept(context.Background(), m.ID, "worker-1"); err != nil {
		t.Fatalf("second accept: %v", err)
	}

	// Revocar solo puede quien invitó.
	if _, err := svc.Revoke(context.Background(), m.ID, "worker-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	revoked, err := svc.Revoke(context.Background(), m.ID, "owner-1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != StatusRevoked || revoked.RevokedAt == nil {
		t.Fatalf("expected revoked with timestamp, got %+v", revoked)
	}

	// Revoke también es idempotente.
	if _, err := svc.Revoke(context.Background(), m.ID, "owner-1"); err != nil {
		t.Fatalf("second revoke: %v", err)
	}

	// Un membership revocado no se puede aceptar.
	if _, err := svc.Accept(context.Background(), m.ID, "worker-1"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestHasScope(t *testing.T) {
	m := Membership{Scopes: []Scope{ScopeAnimalsRead, ScopeBreedingRead}}

	if !HasScope(m, ScopeAnimalsRead) {
		t.Fatal("expected animals:read")
	}
	if HasScope(m, ScopeSettingsEdit) {
		t.Fatal("did not expect settings:edit")
	}
}
