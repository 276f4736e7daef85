package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dairy-herd-service/internal/domain/members"
	"dairy-herd-service/internal/router"
)

const testFarmID = "farm-1"

func TestHTTP_EndToEnd_BreedingFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	memberID := "member-1"
	today := time.Now().UTC().Format("2006-01-02")

	// 1) Owner registra una vaquillona de 20 meses; sin status explícito
	//    el clasificador decide.
	animalID := createAnimal(t, ts.URL, ownerID, map[string]any{
		"tag_number": "AR-0001",
		"name":       "Aurora",
		"breed":      "holando",
		"gender":     "female",
		"birth_date": time.Now().UTC().AddDate(0, 0, -600).Format("2006-01-02"),
	})

	// 2) Miembro sin membresía NO puede ver el animal
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals/"+animalID, memberID, "member", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before membership, got %d", st)
		}
	}

	// 3) Owner invita al miembro con scopes de solo lectura
	membershipID := inviteMember(t, ts.URL, ownerID, memberID, []string{
		string(members.ScopeAnimalsRead),
		string(members.ScopeBreedingRead),
	})

	// 4) El miembro ve su invitación pendiente
	{
		st, body := doReq(t, ts.URL, "GET", "/me/memberships", memberID, "member", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my memberships, got %d body=%s", st, string(body))
		}
	}

	// 5) Acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/members/invitations/"+membershipID+"/accept", memberID, "member", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept invitation, got %d body=%s", st, string(body))
		}
	}

	// 6) Ahora sí puede ver el animal
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID, memberID, "member", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get animal by member, got %d body=%s", st, string(body))
		}
		var resp struct {
			ProductionStatus string `json:"production_status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ProductionStatus != "heifer" {
			t.Fatalf("expected classified heifer, got %q", resp.ProductionStatus)
		}
	}

	// 7) Elegibilidad con breeding:read
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID+"/breeding/eligibility", memberID, "member", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 eligibility by member, got %d body=%s", st, string(body))
		}
		var resp struct {
			CanBreed bool     `json:"can_breed"`
			Blockers []string `json:"blockers"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.CanBreed {
			t.Fatalf("expected breedable heifer, blockers=%v", resp.Blockers)
		}
	}

	// 8) Registrar eventos requiere breeding:record, que el miembro no tiene
	{
		st, _ := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/events", memberID, "member", map[string]any{
			"type":       "SERVICE",
			"event_date": today,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 record event without scope, got %d", st)
		}
	}

	// 9) El owner registra el servicio
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/events", ownerID, "", map[string]any{
			"type":       "SERVICE",
			"event_date": today,
			"sire_tag":   "TORO-9",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record service, got %d body=%s", st, string(body))
		}
	}

	// 10) El animal quedó servido con fecha de parto proyectada
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID, ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get animal, got %d body=%s", st, string(body))
		}
		var resp struct {
			ProductionStatus    string  `json:"production_status"`
			ServiceDate         *string `json:"service_date"`
			ExpectedCalvingDate *string `json:"expected_calving_date"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ProductionStatus != "served" {
			t.Fatalf("expected served after service, got %q", resp.ProductionStatus)
		}
		if resp.ServiceDate == nil || resp.ExpectedCalvingDate == nil {
			t.Fatalf("expected projected dates, body=%s", string(body))
		}
	}

	// 11) Un segundo servicio choca contra la preñez: 409 con la elegibilidad
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/events", ownerID, "", map[string]any{
			"type":       "SERVICE",
			"event_date": today,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 second service, got %d body=%s", st, string(body))
		}
		var resp struct {
			CanBreed bool     `json:"can_breed"`
			Blockers []string `json:"blockers"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.CanBreed || len(resp.Blockers) == 0 {
			t.Fatalf("expected eligibility body with blockers, body=%s", string(body))
		}
	}

	// 12) Parto => lactancia
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/events", ownerID, "", map[string]any{
			"type":       "CALVING",
			"event_date": today,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record calving, got %d body=%s", st, string(body))
		}
	}

	// 13) Secado sobre una vaca en lactancia
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/dry-off", ownerID, "", map[string]any{})
		if st != http.StatusOK {
			t.Fatalf("expected 200 dry-off, got %d body=%s", st, string(body))
		}
		var resp struct {
			ProductionStatus string `json:"production_status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ProductionStatus != "dry" {
			t.Fatalf("expected dry after dry-off, got %q", resp.ProductionStatus)
		}
	}

	// 14) Secar dos veces no es una transición válida
	{
		st, _ := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/breeding/dry-off", ownerID, "", map[string]any{})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 double dry-off, got %d", st)
		}
	}

	// 15) El historial quedó completo: servicio, parto y secado
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID+"/breeding/events", ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list events, got %d body=%s", st, string(body))
		}
		var resp []struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp) != 3 {
			t.Fatalf("expected 3 events, got %d body=%s", len(resp), string(body))
		}
	}

	// 16) Owner revoca la membresía y el miembro pierde acceso al instante
	{
		st, body := doReq(t, ts.URL, "POST", "/members/"+membershipID+"/revoke", ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke membership, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals/"+animalID, memberID, "member", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
	}
}

func TestHTTP_Settings_DefaultsAndValidation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"

	// GET sin configurar devuelve defaults
	st, body := doReq(t, ts.URL, "GET", "/settings/breeding", ownerID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get settings, got %d body=%s", st, string(body))
	}
	var resp struct {
		FarmID                   string `json:"farm_id"`
		MinimumBreedingAgeMonths int    `json:"minimum_breeding_age_months"`
		DefaultGestationDays     int    `json:"default_gestation_days"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.FarmID != testFarmID || resp.MinimumBreedingAgeMonths != 15 || resp.DefaultGestationDays != 280 {
		t.Fatalf("unexpected defaults: %+v", resp)
	}

	valid := map[string]any{
		"minimum_breeding_age_months": 14,
		"default_gestation_days":      283,
		"days_pregnant_at_dryoff":     223,
		"postpartum_delay_days":       50,
		"heat_cycle_days":             21,
		"pregnancy_check_days":        45,
		"missed_heat_alert_days":      42,
		"heat_retry_days":             21,
		"diagnosis_interval_days":     60,
		"cost_per_ai":                 35.5,
		"alert_types":                 []string{"app"},
	}

	// Campo fuera de rango => 400 nombrando el campo
	{
		bad := map[string]any{}
		for k, v := range valid {
			bad[k] = v
		}
		bad["minimum_breeding_age_months"] = 5
		st, body := doReq(t, ts.URL, "PUT", "/settings/breeding", ownerID, "", bad)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 out-of-range settings, got %d body=%s", st, string(body))
		}
	}

	// PUT válido persiste y estampa updated_at
	{
		st, body := doReq(t, ts.URL, "PUT", "/settings/breeding", ownerID, "", valid)
		if st != http.StatusOK {
			t.Fatalf("expected 200 put settings, got %d body=%s", st, string(body))
		}
		var saved struct {
			MinimumBreedingAgeMonths int     `json:"minimum_breeding_age_months"`
			UpdatedAt                *string `json:"updated_at"`
		}
		_ = json.Unmarshal(body, &saved)
		if saved.MinimumBreedingAgeMonths != 14 || saved.UpdatedAt == nil {
			t.Fatalf("unexpected saved settings: body=%s", string(body))
		}
	}
}

func TestHTTP_InviteMember_RejectsUnknownScope(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/members/invitations", "owner-1", "", map[string]any{
		"member_user_id": "member-1",
		"scopes":         []string{"animals:read", "animals:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func TestHTTP_RequiresClaims(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// Sin headers de debug no hay claims => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals", "", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without claims, got %d", st)
		}
	}

	// /health es público
	{
		st, _ := doReq(t, ts.URL, "GET", "/health", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 health, got %d", st)
		}
	}
}

func createAnimal(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals", userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create animal: missing id body=%s", string(body))
	}
	return resp.ID
}

func inviteMember(t *testing.T, baseURL, ownerID, memberID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/members/invitations", ownerID, "", map[string]any{
		"member_user_id": memberID,
		"scopes":         scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite member, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite member: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-Farm-ID", testFarmID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
