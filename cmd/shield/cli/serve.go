package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/powershield/shield/internal/server"
	"github.com/powershield/shield/internal/service"
	"github.com/powershield/shield/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP server that exposes the public site endpoints and the authenticated admin API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5000, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx := context.Background()

	uri := viper.GetString("mongodb.uri")
	if uri == "" {
		return fmt.Errorf("mongodb uri is required (set mongodb.uri in shield.yaml or SHIELD_MONGODB_URI)")
	}

	st, err := store.Connect(ctx, store.Config{
		URI:          uri,
		FallbackURIs: viper.GetStringSlice("mongodb.fallback_uris"),
		Database:     viper.GetString("mongodb.database"),
	}, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close(context.Background())

	if err := st.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		jwtSecret = "shield-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using insecure development secret")
	}
	authSvc := service.NewAuth(st, jwtSecret)

	count, err := st.CountAdmins(ctx)
	if err != nil {
		logger.Warn("failed to check for admin accounts", "error", err)
	} else if count == 0 {
		logger.Warn("no admin account found - run: shield admin create")
	}

	corsOrigins := viper.GetStringSlice("server.cors_origins")
	if len(corsOrigins) == 0 || dev {
		corsOrigins = []string{"*"}
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	srvCfg.ShutdownTimeout = 30 * time.Second
	srvCfg.CORSOrigins = corsOrigins

	srv := server.New(srvCfg, st, authSvc, logger)

	fmt.Printf("→ Shield API\n")
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Health: http://%s:%d/api/health\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}
