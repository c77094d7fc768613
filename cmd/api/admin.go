package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/service"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long:  "Create an administrator account in the configured store. Missing values are read from stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return createAdmin(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password (at least 6 characters)")
}

func createAdmin(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	reader := bufio.NewReader(in)
	name, err := promptIfEmpty(reader, out, adminName, "Name")
	if err != nil {
		return err
	}
	email, err := promptIfEmpty(reader, out, adminEmail, "Email")
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(reader, out, adminPassword, "Password")
	if err != nil {
		return err
	}

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: store.users})
	user, err := authService.CreateAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}

	logger.Info("admin account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	fmt.Fprintf(out, "Admin account created: %s (%s)\n", user.Email, user.ID)
	return nil
}

func promptIfEmpty(reader *bufio.Reader, out io.Writer, value, label string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
