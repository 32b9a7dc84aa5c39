package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/documents"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/scheduling"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDContextKey   = "legalpro_user_id"
	identityContextKey = "legalpro_identity"

	defaultHeartbeatInterval = 25 * time.Second
)

var (
	errMissingUsersService     = errors.New("users service dependency required")
	errMissingLegalService     = errors.New("legal service dependency required")
	errMissingDocumentsService = errors.New("documents service dependency required")
	errMissingTokenIssuer      = errors.New("token issuer dependency required")
	errMissingSessionValidator = errors.New("session validator dependency required")
)

// SessionAuthenticator resolves the identity behind a request.
type SessionAuthenticator interface {
	ValidateRequest(r *http.Request) (auth.Identity, error)
	CookieName() string
}

// SessionTokenIssuer signs session tokens at login.
type SessionTokenIssuer interface {
	Issue(identity auth.Identity) (string, time.Time, error)
	TTL() time.Duration
}

// TokenRevoker records logged-out token ids until their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// PasswordResetMailer delivers password reset links.
type PasswordResetMailer interface {
	SendPasswordReset(to, userName, resetURL string) error
}

type Dependencies struct {
	Users       *users.Service
	Legal       *legal.Service
	Documents   *documents.Service
	Tokens      SessionTokenIssuer
	Sessions    SessionAuthenticator
	Revocations TokenRevoker
	Mailer      PasswordResetMailer
	Realtime    *RealtimeDispatcher
	Scheduling  scheduling.Engine
	Logger      *zap.Logger

	AllowedOrigins    []string
	AppBaseURL        string
	CookieSecure      bool
	ExposeResetToken  bool
	HeartbeatInterval time.Duration
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Users == nil {
		return nil, errMissingUsersService
	}
	if deps.Legal == nil {
		return nil, errMissingLegalService
	}
	if deps.Documents == nil {
		return nil, errMissingDocumentsService
	}
	if deps.Tokens == nil {
		return nil, errMissingTokenIssuer
	}
	if deps.Sessions == nil {
		return nil, errMissingSessionValidator
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	handler := &httpHandler{
		users:            deps.Users,
		legal:            deps.Legal,
		documents:        deps.Documents,
		tokens:           deps.Tokens,
		sessions:         deps.Sessions,
		revocations:      deps.Revocations,
		mailer:           deps.Mailer,
		realtime:         realtime,
		engine:           deps.Scheduling,
		logger:           logger,
		appBaseURL:       deps.AppBaseURL,
		cookieSecure:     deps.CookieSecure,
		exposeResetToken: deps.ExposeResetToken,
		heartbeat:        heartbeat,
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET("/uploads/:name", handler.handleDownload)

	authRoutes := router.Group("/api/auth")
	authRoutes.POST("/register", handler.handleRegister)
	authRoutes.POST("/login", handler.handleLogin)
	authRoutes.POST("/logout", handler.handleLogout)
	authRoutes.POST("/forgot", handler.handleForgotPassword)
	authRoutes.POST("/reset", handler.handleResetPassword)

	protected := router.Group("/api")
	protected.Use(handler.authorizeRequest)
	protected.GET("/auth/me", handler.handleMe)
	protected.GET("/events", handler.handleEvents)

	registerResource[legal.Case, *legal.Case, legal.CaseInput](protected, handler, "cases", deps.Legal.Cases, nil)
	registerResource[legal.Client, *legal.Client, legal.ClientInput](protected, handler, "clients", deps.Legal.Clients, nil)
	registerResource[legal.Hearing, *legal.Hearing, legal.HearingInput](protected, handler, "hearings", deps.Legal.Hearings, nil)
	registerResource[legal.Alert, *legal.Alert, legal.AlertInput](protected, handler, "alerts", deps.Legal.Alerts, nil)
	registerResource(protected, handler, "invoices", deps.Legal.Invoices, func(in legal.InvoiceInput) legal.InvoiceInput {
		return in.WithClock(deps.Legal.Now)
	})
	registerResource(protected, handler, "time-entries", deps.Legal.TimeEntries, func(in legal.TimeEntryInput) legal.TimeEntryInput {
		return in.WithClock(deps.Legal.Now)
	})

	protected.GET("/cases/:id/conflicts", handler.handleCaseConflicts)
	protected.PATCH("/alerts/:id/read", handler.handleMarkAlertRead)
	protected.POST("/alerts/reminders", handler.handleGenerateReminders)
	protected.POST("/invoices/:id/send", handler.handleSendInvoice)

	documentRoutes := protected.Group("/documents")
	documentRoutes.GET("/folders", handler.handleListFolders)
	documentRoutes.POST("/folders", handler.handleCreateFolder)
	documentRoutes.PUT("/folders/:id", handler.handleRenameFolder)
	documentRoutes.DELETE("/folders/:id", handler.handleDeleteFolder)
	documentRoutes.GET("/files", handler.handleListFiles)
	documentRoutes.GET("/files/:id", handler.handleGetFile)
	documentRoutes.PUT("/files/:id", handler.handleUpdateFile)
	documentRoutes.DELETE("/files/:id", handler.handleDeleteFile)
	documentRoutes.POST("/upload", handler.handleUpload)

	return router, nil
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		config.AllowOriginFunc = func(string) bool { return true }
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return cors.New(config)
}

type httpHandler struct {
	users       *users.Service
	legal       *legal.Service
	documents   *documents.Service
	tokens      SessionTokenIssuer
	sessions    SessionAuthenticator
	revocations TokenRevoker
	mailer      PasswordResetMailer
	realtime    *RealtimeDispatcher
	engine      scheduling.Engine
	logger      *zap.Logger

	appBaseURL       string
	cookieSecure     bool
	exposeResetToken bool
	heartbeat        time.Duration
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	identity, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, identity.UserID)
	c.Set(identityContextKey, identity)
	c.Next()
}

func (h *httpHandler) publish(userID, resource, action string, recordIDs ...string) {
	if h.realtime == nil || len(recordIDs) == 0 {
		return
	}
	h.realtime.Publish(RealtimeMessage{
		UserID:    userID,
		EventType: RealtimeEventRecordChanged,
		Resource:  resource,
		Action:    action,
		RecordIDs: recordIDs,
		Timestamp: time.Now().UTC(),
	})
}

// decodeJSON decodes the request body into out and rejects fields out does not declare.
func decodeJSON(c *gin.Context, out interface{}) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
