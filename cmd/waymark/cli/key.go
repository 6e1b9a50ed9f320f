package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/waymark-io/waymark/internal/service"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage API keys",
		Long:    "Create, list, and revoke the API keys used to authenticate history queries.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	var (
		user        string
		description string
		expiresIn   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Generate a new API key for a user. The raw key is shown once and cannot be retrieved again.",
		Example: `  waymark key create --user alice --description "phone"
  waymark key create --user ci --expires-in 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate(user, description, expiresIn)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Owning user name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description for the key")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "Optional key lifetime (e.g. 720h); 0 means no expiry")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runKeyCreate(user, description string, expiresIn time.Duration) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	auth := service.NewAuthService(st, "", discardLogger())

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().UTC().Add(expiresIn)
		expiresAt = &t
	}

	rawKey, key, err := auth.GenerateKey(context.Background(), user, description, expiresAt)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	fmt.Println("API Key created:")
	fmt.Println()
	fmt.Printf("  Key:  %s\n", rawKey)
	fmt.Printf("  User: %s\n", key.UserName)
	if description != "" {
		fmt.Printf("  Description: %s\n", description)
	}
	if expiresAt != nil {
		fmt.Printf("  Expires: %s\n", expiresAt.Format(time.RFC3339))
	}
	fmt.Println()
	fmt.Println("  Save this key now - it cannot be retrieved again.")
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys, err := st.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	type keyRow struct {
		Prefix   string `json:"prefix"`
		User     string `json:"user"`
		Active   bool   `json:"active"`
		LastUsed string `json:"last_used,omitempty"`
	}

	rows := make([]keyRow, len(keys))
	for i, k := range keys {
		lastUsed := ""
		if k.LastUsed != nil {
			lastUsed = k.LastUsed.Format(time.RFC3339)
		}
		rows[i] = keyRow{
			Prefix:   k.KeyPrefix,
			User:     k.UserName,
			Active:   k.IsActive,
			LastUsed: lastUsed,
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No API keys configured. Use 'waymark key create' to create one.")
		return nil
	}

	fmt.Printf("%-14s %-20s %-8s %-24s\n", "PREFIX", "USER", "ACTIVE", "LAST USED")
	fmt.Printf("%-14s %-20s %-8s %-24s\n", "------", "----", "------", "---------")
	for _, k := range rows {
		active := "yes"
		if !k.Active {
			active = "no"
		}
		lastUsed := k.LastUsed
		if lastUsed == "" {
			lastUsed = "never"
		}
		fmt.Printf("%-14s %-20s %-8s %-24s\n", k.Prefix, k.User, active, lastUsed)
	}
	return nil
}

// ---------- key revoke ----------

func newKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <prefix>",
		Short: "Revoke an API key by its prefix",
		Long:  "Mark all active keys with the given display prefix as revoked. The row is kept for audit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyRevoke(args[0])
		},
	}
	return cmd
}

func runKeyRevoke(prefix string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.RevokeAPIKeyByPrefix(context.Background(), prefix); err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}

	fmt.Printf("Revoked key(s) with prefix %s\n", prefix)
	return nil
}
