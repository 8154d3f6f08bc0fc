package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/internal/auth"
	"github.com/edelguur/admin-backend/internal/users"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
	"github.com/edelguur/admin-backend/pkg/security"
)

const tempPasswordLength = 16

type userInput struct {
	Name     string
	Email    string
	Password string
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage admin accounts"}

	var in userInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Long: `Create an admin account directly in the database.

When --password is omitted a random password is generated and printed once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			return runCreateUser(cmd.Context(), e.db, e.cfg.Password, in, cmd.OutOrStdout())
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "display name")
	create.Flags().StringVar(&in.Email, "email", "", "login email")
	create.Flags().StringVar(&in.Password, "password", "", "initial password")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

func runCreateUser(ctx context.Context, client *db.Client, pwCfg config.PasswordConfig, in userInput, out io.Writer) error {
	name := strings.TrimSpace(in.Name)
	email := users.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}

	password, generated := in.Password, false
	if password == "" {
		var err error
		if password, err = security.GenerateTempPassword(tempPasswordLength); err != nil {
			return err
		}
		generated = true
	}
	if len(password) < auth.MinPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}
	hash, err := security.HashPassword(password, pwCfg)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	repo := users.NewRepository(client.DB())
	var created *users.UserDTO
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		exists, err := txRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "user already exists").WithDetails(map[string]any{"email": email})
		}
		row, err := txRepo.Create(ctx, users.CreateUserDTO{Name: name, Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		created = users.FromModel(row)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created user %d <%s>\n", created.ID, created.Email)
	if generated {
		fmt.Fprintf(out, "password: %s\n", password)
	}
	return nil
}
