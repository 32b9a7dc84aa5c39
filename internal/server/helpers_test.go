package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/database"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/documents"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/mailer"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/session"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/storage"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordedReset struct {
	To       string
	UserName string
	ResetURL string
}

type recordingMailer struct {
	mu       sync.Mutex
	resets   []recordedReset
	invoices []mailer.InvoiceMail
	err      error
}

func (m *recordingMailer) SendPasswordReset(to, userName, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, recordedReset{To: to, UserName: userName, ResetURL: resetURL})
	return m.err
}

func (m *recordingMailer) SendInvoice(invoice mailer.InvoiceMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, invoice)
	return m.err
}

type testEnvironment struct {
	handler     http.Handler
	mail        *recordingMailer
	revocations *session.MemoryStore
	realtime    *RealtimeDispatcher
	legalNow    time.Time
}

func newTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	legalNow := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	current := legalNow
	legalClock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		current = current.Add(time.Second)
		return current
	}

	mail := &recordingMailer{}
	userService, err := users.NewService(users.ServiceConfig{Database: db, HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("failed to create users service: %v", err)
	}
	legalService, err := legal.NewService(legal.ServiceConfig{
		Database:   db,
		Clock:      legalClock,
		IDProvider: legal.NewUUIDProvider(),
		Mailer:     mail,
	})
	if err != nil {
		t.Fatalf("failed to create legal service: %v", err)
	}
	blobs, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create disk store: %v", err)
	}
	documentService, err := documents.NewService(documents.ServiceConfig{
		Database:   db,
		Blobs:      blobs,
		Clock:      legalClock,
		IDProvider: legal.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to create documents service: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{SigningSecret: []byte("test-signing-secret")})
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}
	revocations := session.NewMemoryStore(nil)
	sessions, err := auth.NewSessionValidator(auth.SessionValidatorConfig{Tokens: tokens, Revocations: revocations})
	if err != nil {
		t.Fatalf("failed to create session validator: %v", err)
	}

	realtime := NewRealtimeDispatcher()
	handler, err := NewHTTPHandler(Dependencies{
		Users:             userService,
		Legal:             legalService,
		Documents:         documentService,
		Tokens:            tokens,
		Sessions:          sessions,
		Revocations:       revocations,
		Mailer:            mail,
		Realtime:          realtime,
		Logger:            zap.NewNop(),
		AppBaseURL:        "https://app.example.com",
		ExposeResetToken:  true,
		HeartbeatInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to construct http handler: %v", err)
	}
	return &testEnvironment{
		handler:     handler,
		mail:        mail,
		revocations: revocations,
		realtime:    realtime,
		legalNow:    legalNow,
	}
}

func (e *testEnvironment) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	e.handler.ServeHTTP(recorder, request)
	return recorder
}

func (e *testEnvironment) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	register := e.request(t, http.MethodPost, "/api/auth/register",
		`{"name":"Counsel","email":"`+email+`","password":"secret-pass"}`, "")
	if register.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", register.Code, register.Body.String())
	}
	login := e.request(t, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"secret-pass"}`, "")
	if login.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", login.Code, login.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	decodeBody(t, login, &payload)
	return payload.Token
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func expectError(t *testing.T, recorder *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if recorder.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, recorder.Code, recorder.Body.String())
	}
	expected := `{"error":"` + code + `"}`
	if recorder.Body.String() != expected {
		t.Fatalf("expected body %s, got %s", expected, recorder.Body.String())
	}
}
