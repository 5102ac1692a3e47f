package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/auth"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/model"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

// newUserCreateCmd is the only way to create employees; public registration
// always yields guests.
func newUserCreateCmd() *cobra.Command {
	var name, email, phone, password, role string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a user, employee by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := context.Background()

			st, err := openStores(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer st.close()

			svc := auth.NewService(st.users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost)
			u, err := svc.Register(ctx, auth.RegisterInput{
				Name:     name,
				Email:    email,
				Phone:    phone,
				Password: password,
				Role:     model.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created %s %q (id %s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&email, "email", "", "login email")
	c.Flags().StringVar(&phone, "phone", "", "contact phone")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&role, "role", string(model.RoleEmployee), "guest or employee")
	for _, f := range []string{"name", "email", "phone", "password"} {
		_ = c.MarkFlagRequired(f)
	}
	return c
}
