package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/config"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/database"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/documents"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/logging"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/mailer"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/scheduling"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/server"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/session"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/storage"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type revocationStore interface {
	auth.RevocationChecker
	server.TokenRevoker
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(appConfig.DatabaseDriver, appConfig.DatabaseDSN, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	blobs, err := openBlobStore(ctx, appConfig)
	if err != nil {
		logger.Error("failed to open blob store", zap.String("driver", appConfig.StorageDriver), zap.Error(err))
		return err
	}

	revocations, closeRevocations, err := openRevocations(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer closeRevocations()

	mail := mailer.NewService(mailer.Config{
		Host:     appConfig.SMTP.Host,
		Port:     appConfig.SMTP.Port,
		Username: appConfig.SMTP.Username,
		Password: appConfig.SMTP.Password,
		From:     appConfig.SMTP.From,
	}, nil)
	if !mail.IsConfigured() {
		logger.Warn("smtp relay not configured; password reset and invoice mail are disabled")
	}

	tokenIssuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		TokenTTL:      appConfig.TokenTTL,
	})
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		Tokens:      tokenIssuer,
		Revocations: revocations,
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.ServiceConfig{
		Database: db,
		Clock:    time.Now,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	legalService, err := legal.NewService(legal.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: legal.NewUUIDProvider(),
		Logger:     logger,
		Mailer:     mail,
	})
	if err != nil {
		return err
	}
	documentService, err := documents.NewService(documents.ServiceConfig{
		Database:   db,
		Blobs:      blobs,
		Clock:      time.Now,
		IDProvider: legal.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Users:            userService,
		Legal:            legalService,
		Documents:        documentService,
		Tokens:           tokenIssuer,
		Sessions:         sessions,
		Revocations:      revocations,
		Mailer:           mail,
		Realtime:         server.NewRealtimeDispatcher(),
		Scheduling:       scheduling.Engine{Location: appConfig.CalendarLocation},
		Logger:           logger,
		AllowedOrigins:   appConfig.AllowedOrigins,
		AppBaseURL:       appConfig.AppBaseURL,
		CookieSecure:     appConfig.CookieSecure,
		ExposeResetToken: appConfig.ExposeResetToken,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("database_driver", appConfig.DatabaseDriver),
			zap.String("storage_driver", appConfig.StorageDriver))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func openBlobStore(ctx context.Context, appConfig config.AppConfig) (storage.BlobStore, error) {
	if appConfig.StorageDriver == config.StorageDriverMinio {
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  appConfig.Minio.Endpoint,
			AccessKey: appConfig.Minio.AccessKey,
			SecretKey: appConfig.Minio.SecretKey,
			Bucket:    appConfig.Minio.Bucket,
			UseSSL:    appConfig.Minio.UseSSL,
		})
	}
	return storage.NewDiskStore(appConfig.UploadsDir)
}

// openRevocations uses Redis when redis.url is set and an in-process store otherwise.
func openRevocations(ctx context.Context, appConfig config.AppConfig, logger *zap.Logger) (revocationStore, func(), error) {
	if appConfig.RedisURL == "" {
		logger.Info("session revocations kept in memory")
		return session.NewMemoryStore(nil), func() {}, nil
	}
	store, err := session.NewRedisStore(ctx, appConfig.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", zap.Error(err))
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}, nil
}
