package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vet-clinic-api/internal/adapters/auth/jwtauth"
	"vet-clinic-api/internal/adapters/storage/memory"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clinicservices"
	"vet-clinic-api/internal/domain/dashboard"
	"vet-clinic-api/internal/domain/histories"
	"vet-clinic-api/internal/domain/inventory"
	"vet-clinic-api/internal/domain/notifications"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/triage"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/logger"
)

// newTestHandler arma la API completa sobre repositorios en memoria,
// sin verifier: la identidad viaja en cabeceras de debug.
func newTestHandler() http.Handler {
	usersSvc := users.NewService(memory.NewUserRepository())
	ownersSvc := owners.NewService(memory.NewOwnerRepository())
	historiesSvc := histories.NewService(memory.NewHistoryRepository())
	petsSvc := pets.NewService(memory.NewPetRepository(), historiesSvc)
	servicesSvc := clinicservices.NewService(memory.NewClinicServiceRepository())

	notifier := notifications.NewService(nil, petsSvc, ownersSvc, nil, logger.Nop())

	apptsSvc := appointments.NewService(memory.NewAppointmentRepository(), petsSvc, usersSvc, servicesSvc, notifier)
	triageSvc := triage.NewService(memory.NewTriageRepository(), apptsSvc)
	inventorySvc := inventory.NewService(memory.NewInventoryRepository(), notifier)
	dashboardSvc := dashboard.NewService(apptsSvc, triageSvc, inventorySvc, petsSvc, ownersSvc)

	issuer, err := jwtauth.NewManager("clave-de-pruebas-0123456789", "vet-clinic-api", 30*time.Minute)
	if err != nil {
		panic(err)
	}

	return New(Deps{
		Log:            logger.Nop(),
		Issuer:         issuer,
		AllowedOrigins: []string{"*"},
		Users:          usersSvc,
		Owners:         ownersSvc,
		Pets:           petsSvc,
		ClinicServices: servicesSvc,
		Appointments:   apptsSvc,
		Histories:      historiesSvc,
		Triage:         triageSvc,
		Inventory:      inventorySvc,
		Dashboard:      dashboardSvc,
	})
}

type identity struct {
	userID string
	email  string
	role   string
}

var (
	asAdmin     = identity{userID: "admin-1", role: "superadmin"}
	asAssistant = identity{userID: "asst-1", role: "assistant"}
)

func do(t *testing.T, h http.Handler, method, path string, who *identity, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		req.Header.Set("X-Debug-User-ID", who.userID)
		req.Header.Set("X-Debug-Email", who.email)
		req.Header.Set("X-Debug-Role", who.role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestRouter_Health(t *testing.T) {
	h := newTestHandler()
	rec := do(t, h, http.MethodGet, "/health", nil, nil)
	requireStatus(t, rec, http.StatusOK)
}

func TestRouter_AuthRequired(t *testing.T) {
	h := newTestHandler()
	rec := do(t, h, http.MethodGet, "/api/v1/pets", nil, nil)
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestRouter_RoleEnforcement(t *testing.T) {
	h := newTestHandler()

	// Crear usuarios es exclusivo de superadmin.
	rec := do(t, h, http.MethodPost, "/api/v1/users", &asAssistant, map[string]any{
		"name": "X", "email": "x@clinica.test", "password": "Secreta1x", "role": "vet",
	})
	requireStatus(t, rec, http.StatusForbidden)
}

func TestRouter_ClinicFlow(t *testing.T) {
	h := newTestHandler()

	// Alta del veterinario.
	rec := do(t, h, http.MethodPost, "/api/v1/users", &asAdmin, map[string]any{
		"name": "Dra. Rojas", "email": "rojas@clinica.test",
		"password": "Secreta1x", "role": "vet",
	})
	requireStatus(t, rec, http.StatusCreated)
	vet := decode[map[string]any](t, rec)
	vetID := vet["id"].(string)

	// Propietario y mascota.
	rec = do(t, h, http.MethodPost, "/api/v1/owners", &asAssistant, map[string]any{
		"name": "Carlos Pérez", "email": "carlos@correo.test", "document": "12345678",
	})
	requireStatus(t, rec, http.StatusCreated)
	owner := decode[map[string]any](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/pets", &asAssistant, map[string]any{
		"owner_id": owner["id"], "name": "Milo", "species": "perro",
	})
	requireStatus(t, rec, http.StatusCreated)
	pet := decode[map[string]any](t, rec)
	petID := pet["id"].(string)

	// La historia clínica se abrió sola al registrar la mascota.
	rec = do(t, h, http.MethodGet, "/api/v1/histories?pet_id="+petID, &asAssistant, nil)
	requireStatus(t, rec, http.StatusOK)
	history := decode[map[string]any](t, rec)
	if history["number"] == "" {
		t.Fatalf("expected history number, got %v", history)
	}

	// Servicio del catálogo (solo superadmin).
	rec = do(t, h, http.MethodPost, "/api/v1/services", &asAdmin, map[string]any{
		"name": "Consulta general", "duration_minutes": 30, "cost": 25.0,
	})
	requireStatus(t, rec, http.StatusCreated)
	service := decode[map[string]any](t, rec)

	// Cita con anticipación suficiente.
	scheduledAt := time.Now().Add(6 * time.Hour).UTC().Format(time.RFC3339)
	rec = do(t, h, http.MethodPost, "/api/v1/appointments", &asAssistant, map[string]any{
		"pet_id": petID, "vet_id": vetID, "service_id": service["id"],
		"scheduled_at": scheduledAt, "reason": "control",
	})
	requireStatus(t, rec, http.StatusCreated)
	appt := decode[map[string]any](t, rec)
	apptID := appt["id"].(string)
	if appt["status"] != "scheduled" {
		t.Fatalf("expected scheduled, got %v", appt["status"])
	}

	// Cita sin anticipación: rechazada.
	rec = do(t, h, http.MethodPost, "/api/v1/appointments", &asAssistant, map[string]any{
		"pet_id": petID, "vet_id": vetID, "service_id": service["id"],
		"scheduled_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	requireStatus(t, rec, http.StatusConflict)

	// Confirmar y triar.
	rec = do(t, h, http.MethodPost, "/api/v1/appointments/"+apptID+"/confirm", &asAssistant, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = do(t, h, http.MethodPost, "/api/v1/triage", &asAssistant, map[string]any{
		"appointment_id": apptID, "general_state": "stable",
		"heart_rate": 100, "resp_rate": 25, "temperature_c": 38.5, "pain": "none",
	})
	requireStatus(t, rec, http.StatusCreated)
	tri := decode[map[string]any](t, rec)
	if tri["priority"] != "low" {
		t.Fatalf("expected low priority, got %v", tri["priority"])
	}

	rec = do(t, h, http.MethodGet, "/api/v1/triage/queue", &asAssistant, nil)
	requireStatus(t, rec, http.StatusOK)
	queue := decode[[]map[string]any](t, rec)
	if len(queue) != 1 {
		t.Fatalf("expected 1 pending triage, got %d", len(queue))
	}

	// Resumen del día.
	rec = do(t, h, http.MethodGet, "/api/v1/dashboard", &asAssistant, nil)
	requireStatus(t, rec, http.StatusOK)
	summary := decode[map[string]any](t, rec)
	if summary["pending_triage"].(float64) != 1 {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestRouter_OwnerVisibility(t *testing.T) {
	h := newTestHandler()

	rec := do(t, h, http.MethodPost, "/api/v1/owners", &asAssistant, map[string]any{
		"name": "Ana", "email": "ana@correo.test", "document": "111",
	})
	requireStatus(t, rec, http.StatusCreated)
	ana := decode[map[string]any](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/owners", &asAssistant, map[string]any{
		"name": "Luis", "email": "luis@correo.test", "document": "222",
	})
	requireStatus(t, rec, http.StatusCreated)
	luis := decode[map[string]any](t, rec)

	for i, ownerID := range []any{ana["id"], luis["id"]} {
		rec = do(t, h, http.MethodPost, "/api/v1/pets", &asAssistant, map[string]any{
			"owner_id": ownerID, "name": fmt.Sprintf("Mascota%d", i), "species": "gato",
		})
		requireStatus(t, rec, http.StatusCreated)
	}

	// Ana solo ve su mascota.
	asAna := identity{userID: "u-ana", email: "ana@correo.test", role: "owner"}
	rec = do(t, h, http.MethodGet, "/api/v1/pets", &asAna, nil)
	requireStatus(t, rec, http.StatusOK)
	visible := decode[[]map[string]any](t, rec)
	if len(visible) != 1 || visible[0]["name"] != "Mascota0" {
		t.Fatalf("owner should only see their pets, got %v", visible)
	}

	// Y no puede tocar el inventario.
	rec = do(t, h, http.MethodGet, "/api/v1/inventory", &asAna, nil)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestRouter_PublicRegistrationAndLogin(t *testing.T) {
	h := newTestHandler()

	rec := do(t, h, http.MethodPost, "/api/v1/auth/register", nil, map[string]any{
		"name": "Carlos", "email": "carlos@correo.test", "password": "Secreta1x",
	})
	requireStatus(t, rec, http.StatusCreated)
	u := decode[map[string]any](t, rec)
	if u["role"] != "owner" {
		t.Fatalf("public registration must be owner-only, got %v", u["role"])
	}

	// Credenciales malas: 401 antes de emitir nada.
	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", nil, map[string]any{
		"email": "carlos@correo.test", "password": "otra",
	})
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", nil, map[string]any{
		"email": "carlos@correo.test", "password": "Secreta1x",
	})
	requireStatus(t, rec, http.StatusOK)
	login := decode[map[string]any](t, rec)
	if login["access_token"] == "" || login["token_type"] != "bearer" {
		t.Fatalf("unexpected login payload: %v", login)
	}

	// El mismo correo no puede registrarse dos veces.
	rec = do(t, h, http.MethodPost, "/api/v1/auth/register", nil, map[string]any{
		"name": "Otro Carlos", "email": "CARLOS@correo.test", "password": "Secreta1x",
	})
	requireStatus(t, rec, http.StatusConflict)
}
