package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/client"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/logging"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/scheduling"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultAPIURL = "http://localhost:5000"
	cliTimeout    = 30 * time.Second
)

var errMissingCredentials = errors.New("cli.email and cli.password are required")

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-url", defaultAPIURL, "Base URL of the LegalPro API")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (or LEGALPRO_CLI_PASSWORD)")
	// Bound when the command runs because every client command shares the same keys.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for key, flag := range map[string]string{
			"cli.api_url":  "api-url",
			"cli.email":    "email",
			"cli.password": "password",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		return nil
	}
}

func newConflictsCommand() *cobra.Command {
	var caseID string
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List scheduling and interest conflicts for a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			store, logger, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			conflicts, err := store.Conflicts(caseID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(conflicts) == 0 {
				fmt.Fprintln(out, "no conflicts")
				return nil
			}
			for _, conflict := range conflicts {
				fmt.Fprintf(out, "%s\t%s\t%s\n", conflict.Severity, conflict.Type, conflict.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&caseID, "case", "", "Case identifier")
	_ = cmd.MarkFlagRequired("case")
	addClientFlags(cmd)
	return cmd
}

func newRemindersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Create the missing hearing reminders for upcoming hearings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			store, logger, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			created, err := store.SyncReminders(ctx, time.Now())
			for _, alert := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", alert.AlertTime.Format(time.RFC3339), alert.Message)
			}
			if err != nil {
				return err
			}
			logger.Info("reminders synced", zap.Int("created", len(created)))
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

func openStore(ctx context.Context) (*client.Store, *zap.Logger, error) {
	logger, err := logging.NewLogger(viper.GetString("log.level"))
	if err != nil {
		return nil, nil, err
	}
	email := viper.GetString("cli.email")
	password := viper.GetString("cli.password")
	if email == "" || password == "" {
		return nil, nil, errMissingCredentials
	}

	api, err := client.NewAPIClient(client.APIConfig{BaseURL: viper.GetString("cli.api_url")})
	if err != nil {
		return nil, nil, err
	}
	if _, err := api.Login(ctx, email, password); err != nil {
		logger.Error("login failed", zap.String("email", email), zap.Error(err))
		return nil, nil, err
	}

	location, err := time.LoadLocation(viper.GetString("scheduling.time_zone"))
	if err != nil {
		return nil, nil, fmt.Errorf("scheduling.time_zone: %w", err)
	}
	store, err := client.NewStore(client.StoreConfig{
		API:    api,
		Engine: scheduling.Engine{Location: location},
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, nil, err
	}
	return store, logger, nil
}
