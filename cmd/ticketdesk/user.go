package main

import (
	"fmt"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/config"
	"ticketdesk/internal/models"
	"ticketdesk/internal/service"

	"github.com/spf13/cobra"
)

type userAddOptions struct {
	username string
	email    string
	password string
	role     string
}

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserAddCommand())
	return cmd
}

func newUserAddCommand() *cobra.Command {
	opts := &userAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user with any role, e.g. the first admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password, at least 6 characters (required)")
	cmd.Flags().StringVar(&opts.role, "role", models.RoleUser, "Role: admin or user")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runUserAdd(cmd *cobra.Command, opts *userAddOptions) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	if cfg.StoreDriver == config.DriverMemory {
		return fmt.Errorf("user add needs a persistent store, STORE_DRIVER is %q", cfg.StoreDriver)
	}

	st, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// No token is issued, so TOKEN_SECRET may be unset.
	secret := cfg.TokenSecret
	if secret == "" {
		secret = "unused"
	}
	tokens, err := auth.NewTokenManager(secret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	svc := service.New(st, tokens, service.Options{Logger: logger})

	user, err := svc.CreateWithRole(cmd.Context(), service.RegisterInput{
		Username: opts.username,
		Email:    opts.email,
		Password: opts.password,
	}, opts.role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Username, user.UserID)
	return nil
}
