package breeding

import (
	"strings"
	"testing"
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/settings"
)

func testSettings() settings.BreedingSettings {
	return settings.Defaults("farm-1")
}

func femaleAged(today time.Time, ageDays int, status animals.ProductionStatus) animals.Animal {
	return animals.Animal{
		ID:               "animal-1",
		FarmID:           "farm-1",
		Gender:           animals.GenderFemale,
		BirthDate:        AddDays(today, -ageDays),
		ProductionStatus: status,
		HealthStatus:     animals.HealthHealthy,
	}
}

func TestEvaluate_MaleBlockedImmediately(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 600, animals.StatusBull)
	a.Gender = animals.GenderMale
	// Incluso enfermo: el sexo corta antes de evaluar nada más.
	a.HealthStatus = animals.HealthSick

	got := Evaluate(a, testSettings(), nil, nil, today)

	if got.CanBreed {
		t.Fatal("expected canBreed=false")
	}
	if len(got.Blockers) != 1 || got.Blockers[0] != "male animals cannot be bred" {
		t.Fatalf("expected single male blocker, got %v", got.Blockers)
	}
}

func TestEvaluate_UnderMinimumAge(t *testing.T) {
	today := date(2025, 6, 1)
	// 400 días = 13 meses, mínimo default 15 => faltan 15*30-400 = 50 días.
	a := femaleAged(today, 400, animals.StatusHeifer)

	got := Evaluate(a, testSettings(), nil, nil, today)

	if got.CanBreed {
		t.Fatal("expected canBreed=false")
	}
	want := "animal is below minimum breeding age of 15 months: 50 days remaining"
	if len(got.Blockers) != 1 || got.Blockers[0] != want {
		t.Fatalf("expected %q, got %v", want, got.Blockers)
	}
}

func TestEvaluate_HealthyHeiferOldEnough(t *testing.T) {
	today := date(2025, 6, 1)
	// 20 meses: pasa edad, estado y salud.
	a := femaleAged(today, 600, animals.StatusHeifer)

	got := Evaluate(a, testSettings(), nil, nil, today)

	if !got.CanBreed {
		t.Fatalf("expected canBreed=true, blockers=%v", got.Blockers)
	}
	if len(got.Blockers) != 0 {
		t.Fatalf("expected no blockers, got %v", got.Blockers)
	}
	if len(got.Reasons) == 0 {
		t.Fatal("expected summary reasons")
	}
	// 20-15 < 3 es falso: no debe salir la advertencia de edad reciente.
	for _, r := range got.Recommendations {
		if strings.Contains(r, "recently reached breeding age") {
			t.Fatalf("unexpected recent-age recommendation: %v", got.Recommendations)
		}
	}
}

func TestEvaluate_RecentlyReachedBreedingAge(t *testing.T) {
	today := date(2025, 6, 1)
	// 16 meses: elegible pero con advertencia de celo.
	a := femaleAged(today, 480, animals.StatusHeifer)

	got := Evaluate(a, testSettings(), nil, nil, today)

	if !got.CanBreed {
		t.Fatalf("expected canBreed=true, blockers=%v", got.Blockers)
	}
	found := false
	for _, r := range got.Recommendations {
		if r == "recently reached breeding age: monitor heat cycles carefully" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected recent-age recommendation, got %v", got.Recommendations)
	}
}

func TestEvaluate_NonBreedableStatus(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 600, animals.StatusCalf)

	got := Evaluate(a, testSettings(), nil, nil, today)

	if got.CanBreed {
		t.Fatal("expected canBreed=false")
	}
	want := `production status "calf" is not breedable`
	if len(got.Blockers) != 1 || got.Blockers[0] != want {
		t.Fatalf("expected %q, got %v", want, got.Blockers)
	}
}

func TestEvaluate_PostpartumRecoveryInProgress(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 1200, animals.StatusLactating)

	// Parió hace 40 días con delay de 60 => faltan 20.
	lastCalving := AddDays(today, -40)

	got := Evaluate(a, testSettings(), &lastCalving, nil, today)

	if got.CanBreed {
		t.Fatal("expected canBreed=false")
	}
	want := "postpartum recovery in progress: 20 days remaining"
	if len(got.Blockers) != 1 || got.Blockers[0] != want {
		t.Fatalf("expected %q, got %v", want, got.Blockers)
	}
	if got.NextBreedingDate == nil {
		t.Fatal("expected next breeding date")
	}
	if wantNext := AddDays(lastCalving, 60); !got.NextBreedingDate.Equal(wantNext) {
		t.Fatalf("expected next breeding %s, got %s", FormatDate(wantNext), FormatDate(*got.NextBreedingDate))
	}
}

func TestEvaluate_PostpartumComplete(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 1200, animals.StatusLactating)
	lastCalving := AddDays(today, -80)

	got := Evaluate(a, testSettings(), &lastCalving, nil, today)

	if !got.CanBreed {
		t.Fatalf("expected canBreed=true, blockers=%v", got.Blockers)
	}
	found := false
	for _, r := range got.Reasons {
		if r == "80 days since last calving, postpartum recovery complete" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected postpartum reason, got %v", got.Reasons)
	}
}

func TestEvaluate_SickOrQuarantinedBlocked(t *testing.T) {
	today := date(2025, 6, 1)

	for _, h := range []animals.HealthStatus{animals.HealthSick, animals.HealthQuarantined} {
		a := femaleAged(today, 600, animals.StatusHeifer)
		a.HealthStatus = h

		got := Evaluate(a, testSettings(), nil, nil, today)
		if got.CanBreed {
			t.Fatalf("%s: expected canBreed=false", h)
		}
		want := `health status "` + string(h) + `" prevents breeding`
		if len(got.Blockers) != 1 || got.Blockers[0] != want {
			t.Fatalf("%s: expected %q, got %v", h, want, got.Blockers)
		}
	}
}

func TestEvaluate_RequiresAttentionStillBreedable(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 600, animals.StatusHeifer)
	a.HealthStatus = animals.HealthRequiresAttention

	got := Evaluate(a, testSettings(), nil, nil, today)
	if !got.CanBreed {
		t.Fatalf("expected canBreed=true, blockers=%v", got.Blockers)
	}
}

func TestEvaluate_PregnantBlocked(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 900, animals.StatusServed)
	expected := AddDays(today, 200)
	a.ExpectedCalvingDate = &expected

	got := Evaluate(a, testSettings(), nil, nil, today)

	if got.CanBreed {
		t.Fatal("expected canBreed=false")
	}
	if len(got.Blockers) != 1 || got.Blockers[0] != "animal is currently pregnant" {
		t.Fatalf("expected pregnancy blocker, got %v", got.Blockers)
	}
}

func TestEvaluate_RecentBreedingOnlyRecommends(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 600, animals.StatusHeifer)
	lastBreeding := AddDays(today, -10)

	got := Evaluate(a, testSettings(), nil, &lastBreeding, today)

	if !got.CanBreed {
		t.Fatalf("expected canBreed=true, blockers=%v", got.Blockers)
	}
	found := false
	for _, r := range got.Recommendations {
		if strings.Contains(r, "bred 10 days ago") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected re-breeding recommendation, got %v", got.Recommendations)
	}
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 600, animals.StatusHeifer)
	lastBreeding := AddDays(today, -10)

	first := Evaluate(a, testSettings(), nil, &lastBreeding, today)
	second := Evaluate(a, testSettings(), nil, &lastBreeding, today)

	if first.CanBreed != second.CanBreed ||
		len(first.Blockers) != len(second.Blockers) ||
		len(first.Reasons) != len(second.Reasons) ||
		len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("evaluation not idempotent: %+v vs %+v", first, second)
	}
}
