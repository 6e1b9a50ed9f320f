package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/waymark-io/waymark/internal/service"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin endpoint utilities",
	}

	cmd.AddCommand(newAdminTokenCmd())

	return cmd
}

func newAdminTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the /admin endpoints",
		Long: `Mint a signed bearer token for the /admin endpoints. Only useful when
the server runs with auth.admin_secret set; without a secret the admin
routes are open and expected to sit behind a reverse proxy's basic auth.

The secret is read from auth.admin_secret (WAYMARK_AUTH_ADMIN_SECRET) or
prompted for interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminToken(ttl)
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func runAdminToken(ttl time.Duration) error {
	secret := viper.GetString("auth.admin_secret")
	if secret == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("auth.admin_secret is not configured")
		}
		fmt.Fprint(os.Stderr, "Admin secret: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read admin secret: %w", err)
		}
		secret = strings.TrimSpace(string(raw))
		if secret == "" {
			return fmt.Errorf("empty admin secret")
		}
	}

	auth := service.NewAuthService(nil, secret, discardLogger())
	token, err := auth.IssueAdminToken(ttl)
	if err != nil {
		return fmt.Errorf("issue admin token: %w", err)
	}

	fmt.Println(token)
	return nil
}
