package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/i18n"
	"github.com/terraincognita07/chitra/internal/reminders"
	"github.com/terraincognita07/chitra/internal/services"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app       *fiber.App
	handler   *Handler
	store     *db.Store
	suite     *services.Suite
	scheduler *reminders.Scheduler
	inbox     *reminders.InboxPresenter
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := db.OpenStore(ctx, filepath.Join(t.TempDir(), "chitra-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	preferences := services.NewPreferencesService(store.Preferences, "en")
	if _, err := preferences.Load(ctx); err != nil {
		t.Fatalf("load preferences: %v", err)
	}

	inbox := reminders.NewInboxPresenter(20)
	backend := reminders.NewTimerBackend(inbox)
	t.Cleanup(func() {
		_ = backend.CancelAll(context.Background())
	})
	scheduler := reminders.NewScheduler(backend, preferences)

	suite := services.NewSuite(store, preferences, scheduler, time.UTC, t.TempDir())
	catalog, err := i18n.NewManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("load message catalog: %v", err)
	}
	suite.UseReminderCopy(catalog)
	suite.Security.SetCost(bcrypt.MinCost)
	scheduler.OnAction(suite.Actions.Handle)

	handler := NewHandler(Dependencies{
		Health:       store,
		Preferences:  suite.Preferences,
		Profiles:     suite.Profiles,
		Security:     suite.Security,
		Tracking:     suite.Tracking,
		Vaccinations: suite.Vaccinations,
		Medicine:     suite.Medicine,
		Feeding:      suite.Feeding,
		CarePoints:   suite.CarePoints,
		Payment:      suite.Payment,
		Export:       suite.Export,
		Reminders:    scheduler,
		Rebuilder:    suite.Reminders,
		Inbox:        inbox,
		Messages:     catalog,
		SecretKey:    "test-secret-key",
		Location:     time.UTC,
	})

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testEnv{
		app:       app,
		handler:   handler,
		store:     store,
		suite:     suite,
		scheduler: scheduler,
		inbox:     inbox,
	}
}

func (env *testEnv) request(t *testing.T, method string, path string, body any, cookies ...*http.Cookie) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s) failed: %v", method, path, err)
	}

	var decoded envelope
	raw, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %s: %v", string(raw), err)
		}
	}
	return response, decoded
}

func decodeData(t *testing.T, payload envelope, target any) {
	t.Helper()
	if err := json.Unmarshal(payload.Data, target); err != nil {
		t.Fatalf("decode data %s: %v", string(payload.Data), err)
	}
}

func responseCookie(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertStatus(t *testing.T, response *http.Response, payload envelope, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		t.Fatalf("expected status %d, got %d (error %q)", expected, response.StatusCode, payload.Error)
	}
}
