package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/waymark-io/waymark/internal/server"
	"github.com/waymark-io/waymark/internal/service"
)

const banner = `
__      ____ _ _   _ _ __ ___   __ _ _ __| | __
\ \ /\ / / _` + "`" + ` | | | | '_ ` + "`" + ` _ \ / _` + "`" + ` | '__| |/ /
 \ V  V / (_| | |_| | | | | | | (_| | |  |   <
  \_/\_/ \__,_|\__, |_| |_| |_|\__,_|_|  |_|\_\
               |___/
`

func newServeCmd() *cobra.Command {
	var (
		port      int
		host      string
		dev       bool
		rateLimit int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Waymark location logger",
		Long:  "Start the HTTP server that ingests location pings and serves authenticated history queries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev, rateLimit)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")
	cmd.Flags().IntVar(&rateLimit, "pub-rate-limit", 0, "Per-IP requests per minute on /pub (0 disables)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("server.pub_rate_limit", cmd.Flags().Lookup("pub-rate-limit"))

	return cmd
}

func runServe(host string, port int, dev bool, rateLimit int) error {
	fmt.Print(banner)
	fmt.Println()

	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store initialized",
		"database_url", viper.GetString("database.url"),
		"data_dir", resolveDataDir(),
	)

	adminSecret := viper.GetString("auth.admin_secret")
	authSvc := service.NewAuthService(st, adminSecret, logger)
	if adminSecret == "" {
		logger.Warn("no admin secret configured; /admin routes rely on the upstream basic-auth gate")
	}

	cfg := server.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.PubRateLimit = rateLimit
	if origins := viper.GetStringSlice("server.cors_origins"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	srv := server.New(cfg, st, authSvc, logger)
	return srv.ListenAndServe()
}
