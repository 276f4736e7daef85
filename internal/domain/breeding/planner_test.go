package breeding

import (
	"errors"
	"testing"

	"dairy-herd-service/internal/domain/animals"
)

func TestEvaluateDryOff_NotServed(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 900, animals.StatusLactating)

	got := EvaluateDryOff(a, testSettings(), today)

	if got.ShowDryOffButton || got.ShouldDryOff {
		t.Fatalf("expected inert result, got %+v", got)
	}
	if got.Reason != "animal is not served or has no service date recorded" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestEvaluateDryOff_ServedWithoutServiceDate(t *testing.T) {
	today := date(2025, 6, 1)
	a := femaleAged(today, 900, animals.StatusServed)

	got := EvaluateDryOff(a, testSettings(), today)
	if got.ShowDryOffButton || got.ShouldDryOff {
		t.Fatalf("expected inert result, got %+v", got)
	}
}

func TestEvaluateDryOff_Windows(t *testing.T) {
	today := date(2025, 6, 1)
	cfg := testSettings() // umbral 220, botón desde 218

	cases := []struct {
		name         string
		daysPregnant int
		showButton   bool
		shouldDryOff bool
		daysToAlert  int
	}{
		{"far from threshold", 150, false, false, 68},
		{"day before window", 217, false, false, 1},
		{"window opens", 218, true, false, 0},
		{"one day into window", 219, true, false, 0},
		{"at threshold", 220, true, true, 0},
		{"past threshold", 230, true, true, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := femaleAged(today, 1500, animals.StatusServed)
			sd := AddDays(today, -c.daysPregnant)
			a.ServiceDate = &sd

			got := EvaluateDryOff(a, cfg, today)

			if got.ShowDryOffButton != c.showButton {
				t.Fatalf("showButton: expected %v, got %v", c.showButton, got.ShowDryOffButton)
			}
			if got.ShouldDryOff != c.shouldDryOff {
				t.Fatalf("shouldDryOff: expected %v, got %v", c.shouldDryOff, got.ShouldDryOff)
			}
			if got.DaysPregnant != c.daysPregnant {
				t.Fatalf("daysPregnant: expected %d, got %d", c.daysPregnant, got.DaysPregnant)
			}
			if got.DaysUntilDryOffAlert != c.daysToAlert {
				t.Fatalf("daysUntilAlert: expected %d, got %d", c.daysToAlert, got.DaysUntilDryOffAlert)
			}
			if got.ExpectedDryOffDate == nil {
				t.Fatal("expected dry-off date")
			}
			want := AddDays(sd, cfg.DaysPregnantAtDryoff)
			if !got.ExpectedDryOffDate.Equal(want) {
				t.Fatalf("expected dry-off %s, got %s", FormatDate(want), FormatDate(*got.ExpectedDryOffDate))
			}
		})
	}
}

func TestPlanDryOff_RequiresLactating(t *testing.T) {
	today := date(2025, 6, 1)

	for _, st := range []animals.ProductionStatus{
		animals.StatusDry, animals.StatusServed, animals.StatusHeifer, animals.StatusCalf,
	} {
		a := femaleAged(today, 1500, st)

		_, err := PlanDryOff(a, nil, today)

		var terr *InvalidTransitionError
		if !errors.As(err, &terr) {
			t.Fatalf("%s: expected InvalidTransitionError, got %v", st, err)
		}
		if terr.From != st || terr.To != animals.StatusDry {
			t.Fatalf("%s: unexpected transition error %+v", st, terr)
		}
	}
}

func TestPlanDryOff_ApplyClearsLactationState(t *testing.T) {
	today := date(2025, 6, 1)

	a := femaleAged(today, 1500, animals.StatusLactating)
	sd := AddDays(today, -220)
	calving := AddDays(today, 60)
	a.ServiceDate = &sd
	a.ExpectedCalvingDate = &calving
	a.DaysInMilk = 280
	a.CurrentDailyProduction = 18.5

	plan, err := PlanDryOff(a, nil, today)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	plan.Apply(&a)

	if a.ProductionStatus != animals.StatusDry {
		t.Fatalf("expected dry, got %s", a.ProductionStatus)
	}
	if a.DryOffDate == nil || !a.DryOffDate.Equal(today) {
		t.Fatalf("expected dry-off date %s, got %v", FormatDate(today), a.DryOffDate)
	}
	if a.LastMilkingDate == nil || !a.LastMilkingDate.Equal(today) {
		t.Fatalf("expected last milking %s, got %v", FormatDate(today), a.LastMilkingDate)
	}
	if a.DaysInMilk != 0 || a.CurrentDailyProduction != 0 {
		t.Fatalf("expected counters reset, got dim=%d prod=%f", a.DaysInMilk, a.CurrentDailyProduction)
	}
	if a.ServiceDate != nil || a.ExpectedCalvingDate != nil {
		t.Fatal("expected service fields cleared")
	}
}

func TestPlanDryOff_ExplicitDate(t *testing.T) {
	today := date(2025, 6, 1)
	explicit := date(2025, 5, 30)

	a := femaleAged(today, 1500, animals.StatusLactating)

	plan, err := PlanDryOff(a, &explicit, today)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.DryOffDate.Equal(explicit) {
		t.Fatalf("expected explicit dry-off date, got %s", FormatDate(plan.DryOffDate))
	}
	// last_milking_date siempre es hoy, no la fecha retroactiva.
	if !plan.LastMilkingDate.Equal(today) {
		t.Fatalf("expected last milking today, got %s", FormatDate(plan.LastMilkingDate))
	}
}

func TestProjectionDates(t *testing.T) {
	sd := date(2025, 1, 1)

	if got := ExpectedCalvingDate(sd, 280); !got.Equal(date(2025, 10, 8)) {
		t.Fatalf("calving: got %s", FormatDate(got))
	}
	if got := ExpectedDryOffDate(sd, 220); !got.Equal(date(2025, 8, 9)) {
		t.Fatalf("dry-off: got %s", FormatDate(got))
	}
	if got := NextExpectedHeatDate(sd, 21); !got.Equal(date(2025, 1, 22)) {
		t.Fatalf("heat: got %s", FormatDate(got))
	}
}
