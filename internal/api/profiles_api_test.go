package api

import (
	"net/http"
	"testing"

	"github.com/terraincognita07/chitra/internal/models"
)

func TestProfileLimitsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	response, payload := env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "Asha", "type": models.ProfileTypeMain})
	assertStatus(t, response, payload, http.StatusCreated)

	response, payload = env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "Second", "type": models.ProfileTypeMain})
	assertStatus(t, response, payload, http.StatusConflict)
	if payload.Success || payload.Error == "" {
		t.Fatalf("expected failure envelope, got %#v", payload)
	}

	for _, name := range []string{"D1", "D2", "D3", "D4"} {
		response, payload = env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": name, "type": models.ProfileTypeDependent})
		assertStatus(t, response, payload, http.StatusCreated)
	}
	response, payload = env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "D5", "type": models.ProfileTypeDependent})
	assertStatus(t, response, payload, http.StatusConflict)

	response, payload = env.request(t, http.MethodGet, "/api/profiles", nil)
	assertStatus(t, response, payload, http.StatusOK)
	var profiles []models.Profile
	decodeData(t, payload, &profiles)
	if len(profiles) != models.MaxProfiles {
		t.Fatalf("expected %d profiles, got %d", models.MaxProfiles, len(profiles))
	}
	if profiles[0].Type != models.ProfileTypeMain {
		t.Fatalf("expected main profile listed first, got %#v", profiles[0])
	}

	response, payload = env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "  ", "type": models.ProfileTypeDependent})
	if response.StatusCode != http.StatusBadRequest && response.StatusCode != http.StatusConflict {
		t.Fatalf("expected blank name to be rejected, got %d", response.StatusCode)
	}
}

func TestActiveProfileSwitchAndDelete(t *testing.T) {
	env := newTestEnv(t)

	_, payload := env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "Asha", "type": models.ProfileTypeMain})
	var main models.Profile
	decodeData(t, payload, &main)
	_, payload = env.request(t, http.MethodPost, "/api/profiles", map[string]string{"name": "Kiran", "type": models.ProfileTypeDependent})
	var child models.Profile
	decodeData(t, payload, &child)

	response, payload := env.request(t, http.MethodPut, "/api/profiles/active", map[string]string{"profileId": child.ID})
	assertStatus(t, response, payload, http.StatusOK)
	var active models.Profile
	decodeData(t, payload, &active)
	if active.ID != child.ID {
		t.Fatalf("expected active profile %s, got %s", child.ID, active.ID)
	}

	response, payload = env.request(t, http.MethodPut, "/api/profiles/active", map[string]string{"profileId": "missing"})
	assertStatus(t, response, payload, http.StatusNotFound)

	response, payload = env.request(t, http.MethodDelete, "/api/profiles/"+child.ID, nil)
	assertStatus(t, response, payload, http.StatusNoContent)

	response, payload = env.request(t, http.MethodGet, "/api/profiles/active", nil)
	assertStatus(t, response, payload, http.StatusOK)
	decodeData(t, payload, &active)
	if active.ID != main.ID {
		t.Fatalf("expected active profile to fall back to %s, got %s", main.ID, active.ID)
	}

	response, payload = env.request(t, http.MethodDelete, "/api/profiles/"+main.ID, nil)
	assertStatus(t, response, payload, http.StatusConflict)
}

func TestProfileScopedRoutesRejectUnknownProfile(t *testing.T) {
	env := newTestEnv(t)

	response, payload := env.request(t, http.MethodGet, "/api/profiles/nope/cycles", nil)
	assertStatus(t, response, payload, http.StatusNotFound)
}
