package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "helpdeskctl",
	Short: "Help-desk ticket administration",
	Long: `helpdeskctl works directly against the ticket document store.
It seeds fixtures, lists and inspects tickets with their audit trail,
and issues bearer tokens for catalog users.

Connection settings come from the same environment as the API server
(STORE_BACKEND, SQLITE_PATH, POSTGRES_DSN, REDIS_ADDR, CATALOG_PATH);
flags and HELPDESK_* variables override them.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HELPDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "store backend (memory, sqlite, postgres, redis)")
	flags.String("sqlite-path", "", "SQLite database file")
	flags.String("catalog", "", "user and category catalog YAML")
	flags.String("actor-id", "system", "actor recorded on audit entries")
	flags.Bool("json", false, "output JSON")
	flags.Bool("verbose", false, "log store activity to stderr")
	for _, name := range []string{"backend", "sqlite-path", "catalog", "actor-id", "json", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(ticketsCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(catalogCmd())
}

// runtime is everything a command needs, opened per invocation.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	stores  *persistence.Stores
	catalog *catalog.Catalog
	tickets *service.TicketService
	queries *service.QueryService
}

func (r *runtime) close() {
	if r.stores != nil {
		r.stores.Close()
	}
	_ = r.logger.Sync()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backend := viper.GetString("backend"); backend != "" {
		cfg.Store.Backend = strings.ToLower(backend)
	}
	if path := viper.GetString("sqlite-path"); path != "" {
		cfg.Store.SQLitePath = path
	}
	if path := viper.GetString("catalog"); path != "" {
		cfg.Catalog.Path = path
	}
	if cfg.Store.Backend == config.BackendPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres store backend")
	}
	return cfg, nil
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// stdout is reserved for command output
	logger := zap.NewNop()
	if viper.GetBool("verbose") {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// pub/sub fan-out belongs to the server
	cfg.Redis.EventsChannel = ""
	stores, err := persistence.OpenStores(ctx, *cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewTicketRepository(stores.Backend, cfg.Store.Collection)
	return &runtime{
		cfg:     cfg,
		logger:  logger,
		stores:  stores,
		catalog: cat,
		tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo: repo,
			Users:      cat,
			Categories: cat,
			Dispatcher: events.NewInMemoryDispatcher(logger),
			Logger:     logger,
		}),
		queries: service.NewQueryService(repo, cat, cfg.Query, logger),
	}, nil
}

// withRuntime opens the store for the duration of fn.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(ctx, rt)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
