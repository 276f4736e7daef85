package animals

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
	byID map[string]Animal
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, farmID, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok || a.FarmID != farmID {
		return Animal{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListByFarm(ctx context.Context, farmID string) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if a.FarmID == farmID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) UpdateWithStatus(ctx context.Context, a Animal, expectedStatus ProductionStatus) error {
	cur, ok := r.byID[a.ID]
	if !ok {
		return errRepoNotFound
	}
	if cur.ProductionStatus != expectedStatus {
		return ErrStaleStatus
	}
	r.byID[a.ID] = a
	return nil
}

type fixedClassifier struct {
	status ProductionStatus
	calls  int
}

func (c *fixedClassifier) InitialStatus(ctx context.Context, farmID string, birthDate time.Time, gender Gender) (ProductionStatus, error) {
	c.calls++
	return c.status, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ClassifiesWhenStatusEmpty(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	cls := &fixedClassifier{status: StatusCalf}
	svc.SetClassifier(cls)

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-001",
		Name:      "Margarita",
		Gender:    "female",
		BirthDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cls.calls != 1 {
		t.Fatalf("expected classifier to run once, ran %d", cls.calls)
	}
	if a.ProductionStatus != StatusCalf {
		t.Fatalf("expected calf, got %s", a.ProductionStatus)
	}
	if a.HealthStatus != HealthHealthy {
		t.Fatalf("expected healthy default, got %s", a.HealthStatus)
	}
	if !a.CreatedAt.Equal(now) || !a.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps stamped, got %s / %s", a.CreatedAt, a.UpdatedAt)
	}
}

func TestService_Create_ExplicitStatusSkipsClassifier(t *testing.T) {
	svc := NewService(newTestRepo())

	cls := &fixedClassifier{status: StatusCalf}
	svc.SetClassifier(cls)

	a, err := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber:        "A-002",
		Gender:           "female",
		BirthDate:        time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		ProductionStatus: "lactating",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cls.calls != 0 {
		t.Fatalf("classifier must not run, ran %d", cls.calls)
	}
	if a.ProductionStatus != StatusLactating {
		t.Fatalf("expected lactating, got %s", a.ProductionStatus)
	}
}

func TestService_Create_Rejections(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.SetClassifier(&fixedClassifier{status: StatusCalf})

	base := CreateInput{
		TagNumber: "A-003",
		Gender:    "female",
		BirthDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty tag", func(in *CreateInput) { in.TagNumber = "  " }},
		{"bad gender", func(in *CreateInput) { in.Gender = "hembra" }},
		{"zero birth date", func(in *CreateInput) { in.BirthDate = time.Time{} }},
		{"bad status", func(in *CreateInput) { in.ProductionStatus = "retired" }},
		{"bad health", func(in *CreateInput) { in.HealthStatus = "fine" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := base
			c.mutate(&in)
			if _, err := svc.Create(context.Background(), "farm-1", in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_NoClassifierAndNoStatus(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-004",
		Gender:    "female",
		BirthDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_UpdateProfile_Patch(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.SetClassifier(&fixedClassifier{status: StatusHeifer})

	a, err := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-005",
		Name:      "Rosa",
		Gender:    "female",
		BirthDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Rosita"
	health := "requires_attention"
	got, err := svc.UpdateProfile(context.Background(), "farm-1", a.ID, UpdateProfileInput{
		Name:         &name,
		HealthStatus: &health,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Rosita" || got.HealthStatus != HealthRequiresAttention {
		t.Fatalf("patch not applied: %+v", got)
	}
	// Lo no enviado queda igual.
	if got.TagNumber != "A-005" {
		t.Fatalf("tag must not change, got %q", got.TagNumber)
	}
}

func TestService_UpdateProfile_NullBirthDateRejected(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.SetClassifier(&fixedClassifier{status: StatusHeifer})

	a, _ := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-006",
		Gender:    "female",
		BirthDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	_, err := svc.UpdateProfile(context.Background(), "farm-1", a.ID, UpdateProfileInput{
		BirthDate: PatchDate{Present: true, Value: nil},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_ApplyTransition_CAS(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.SetClassifier(&fixedClassifier{status: StatusLactating})

	a, err := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-007",
		Gender:    "female",
		BirthDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.ApplyTransition(context.Background(), "farm-1", a.ID, StatusLactating, func(a *Animal) {
		a.ProductionStatus = StatusDry
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got.ProductionStatus != StatusDry {
		t.Fatalf("expected dry, got %s", got.ProductionStatus)
	}

	// Segundo comando con el fromStatus viejo: pierde la carrera.
	_, err = svc.ApplyTransition(context.Background(), "farm-1", a.ID, StatusLactating, func(a *Animal) {
		a.ProductionStatus = StatusDry
	})
	if !errors.Is(err, ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}
}

func TestService_GetByID_ScopedByFarm(t *testing.T) {
	svc := NewService(newTestRepo())
	svc.SetClassifier(&fixedClassifier{status: StatusCalf})

	a, _ := svc.Create(context.Background(), "farm-1", CreateInput{
		TagNumber: "A-008",
		Gender:    "male",
		BirthDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	if _, err := svc.GetByID(context.Background(), "farm-2", a.ID); err == nil {
		t.Fatal("expected error reading another farm's animal")
	}
}
