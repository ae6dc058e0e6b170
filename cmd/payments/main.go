package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/RichoDemus/payments-engine/internal/csvio"
	"github.com/RichoDemus/payments-engine/internal/httpapi"
	"github.com/RichoDemus/payments-engine/internal/store/gormstore"
	"github.com/RichoDemus/payments-engine/internal/zaplog"
	"github.com/RichoDemus/payments-engine/pkg/engine"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagJournalURL     = "journal-url"
	flagQuiet          = "quiet"
	flagListenAddr     = "listen-addr"
	flagAllowedOrigins = "allowed-origins"

	configKeyJournalURL     = "journal_url"
	configKeyQuiet          = "quiet"
	configKeyListenAddr     = "listen_addr"
	configKeyAllowedOrigins = "allowed_origins"

	defaultListenAddr = ":8080"
	envPrefix         = "PAYMENTS"
)

type runtimeConfig struct {
	JournalURL     string
	Quiet          bool
	ListenAddr     string
	AllowedOrigins []string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "payments: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "payments <transactions.csv>",
		Short:         "Process a transaction file and report final account balances",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runFile(ctx, cfg, args[0], os.Stdout)
		},
	}

	cmd.PersistentFlags().String(flagJournalURL, "", "optional audit journal database URL (sqlite:// or postgres://)")
	cmd.PersistentFlags().Bool(flagQuiet, false, "suppress the per-transaction operation log")
	cmd.AddCommand(newServeCommand(cfg))

	return cmd
}

func newServeCommand(cfg *runtimeConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the transaction engine over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().StringSlice(flagAllowedOrigins, nil, "allowed CORS origins")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlag(configKeyJournalURL, cmd.Flags().Lookup(flagJournalURL)); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyQuiet, cmd.Flags().Lookup(flagQuiet)); err != nil {
		return err
	}
	if flag := cmd.Flags().Lookup(flagListenAddr); flag != nil {
		if err := viper.BindPFlag(configKeyListenAddr, flag); err != nil {
			return err
		}
	}
	if flag := cmd.Flags().Lookup(flagAllowedOrigins); flag != nil {
		if err := viper.BindPFlag(configKeyAllowedOrigins, flag); err != nil {
			return err
		}
	}

	cfg.JournalURL = viper.GetString(configKeyJournalURL)
	cfg.Quiet = viper.GetBool(configKeyQuiet)
	cfg.ListenAddr = viper.GetString(configKeyListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	cfg.AllowedOrigins = viper.GetStringSlice(configKeyAllowedOrigins)
	return nil
}

func runFile(ctx context.Context, cfg *runtimeConfig, path string, output io.Writer) error {
	logger, err := newLogger(cfg.Quiet)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	transactionEngine, journal, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	reader := csvio.NewReader(file)
	for {
		transaction, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
		transactionEngine.Process(ctx, transaction)
	}

	snapshots := transactionEngine.Snapshots()
	if journal != nil {
		for _, snapshot := range snapshots {
			if journalErr := journal.RecordSnapshot(ctx, snapshot); journalErr != nil {
				logger.Warn("snapshot journal write failed", zap.Error(journalErr))
			}
		}
	}
	return csvio.NewWriter(output).WriteAll(snapshots)
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := newLogger(cfg.Quiet)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	transactionEngine, _, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := httpapi.NewServer(transactionEngine, logger)
	return httpapi.Run(ctx, httpapi.Config{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, server)
}

func newLogger(quiet bool) (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	return logger, nil
}

func buildEngine(ctx context.Context, cfg *runtimeConfig, logger *zap.Logger) (*engine.Engine, engine.Journal, func(), error) {
	options := []engine.EngineOption{
		engine.WithOperationLogger(zaplog.NewOperationLogger(logger)),
	}
	cleanup := func() {}
	var journal engine.Journal
	if cfg.JournalURL != "" {
		gormDB, dbCleanup, err := openDatabase(ctx, cfg.JournalURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("journal open: %w", err)
		}
		if err := gormstore.Migrate(gormDB); err != nil {
			_ = dbCleanup()
			return nil, nil, nil, err
		}
		journal = gormstore.New(gormDB)
		options = append(options, engine.WithJournal(journal))
		cleanup = func() { _ = dbCleanup() }
	}
	return engine.NewEngine(options...), journal, cleanup, nil
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "payments.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
