package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tandem/internal/app"
	"github.com/dropDatabas3/tandem/internal/bootstrap"
	"github.com/dropDatabas3/tandem/internal/config"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/store/pg"
)

// seteado por -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var (
		configPath string
		envFile    = ".env"
	)

	root := &cobra.Command{
		Use:           "tandem",
		Short:         "API de autenticación y onboarding de Tandem",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configPath = resolveConfigPath(envFile, configPath, cmd.Flags().Changed("config"))
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "ruta a config.yaml (env CONFIG_PATH); vacío = defaults + env")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "ruta a .env (si existe, se carga)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			ServiceName: cfg.App.Name,
			Version:     version,
		})
		return cfg, nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, version)
			if err != nil {
				return err
			}
			logger.L().Info("tandem starting",
				logger.String("env", cfg.App.Env),
				logger.String("storage", cfg.Storage.Driver),
				logger.String("cache", cfg.Cache.Kind),
			)
			return a.Run(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down|status|version|redo|reset]",
		Short:     "Corre las migraciones de PostgreSQL",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status", "version", "redo", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Storage.Driver != "postgres" {
				return errors.New("migrate requires storage.driver=postgres")
			}
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			ctx := cmd.Context()
			pool, err := pg.Connect(ctx, pg.PoolConfig{DSN: cfg.Storage.DSN, MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.RunGoose(ctx, pool, command); err != nil {
				return err
			}
			logger.L().Info("migrate done", logger.String("command", command))
			return nil
		},
	}

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea usuarios demo (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			users := []bootstrap.SeedUser{{Email: "demo@tandem.dev", Password: "demo123", FullName: "Demo User"}}
			if seedFile != "" {
				if users, err = bootstrap.LoadSeedFile(seedFile); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, version)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := bootstrap.SeedUsers(ctx, a.Accounts, users)
			if err != nil {
				return err
			}
			logger.L().Info("seed done", logger.Int("created", n), logger.Int("total", len(users)))
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML con usuarios a crear (default: un usuario demo)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd, versionCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// resolveConfigPath carga .env y recién después mira CONFIG_PATH, así el .env también
// puede fijarlo. .env es opcional y el entorno real siempre gana; --config gana a ambos.
func resolveConfigPath(envFile, flagValue string, flagChanged bool) string {
	_ = godotenv.Load(envFile)
	if flagChanged {
		return flagValue
	}
	return envOr("CONFIG_PATH", flagValue)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
