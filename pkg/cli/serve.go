package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/config"
	"github.com/mockbay/mockbay/pkg/logging"
	"github.com/mockbay/mockbay/pkg/server"
)

const mongoConnectTimeout = 10 * time.Second

var (
	serveConfigFile string
	servePort       int
	serveMongoURI   string
	serveStaticDir  string
	serveLogLevel   string
	serveLogFormat  string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the endpoint server",
	Long: `Start the combined HTTP and WebSocket server.

Without a Mongo URI, endpoint definitions live in memory and vanish on
restart. Captured traffic is always in memory only.`,
	Example: `  # Start with defaults on port 3131
  mockbay serve

  # Start on a custom port with persistent definitions
  mockbay serve --port 8080 --mongo-uri mongodb://localhost:27017/mockbay

  # Start from a config file
  mockbay serve --config mockbay.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to YAML configuration file")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&serveMongoURI, "mongo-uri", "", "MongoDB connection URI (empty = in-memory definitions)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Directory served for unclaimed paths")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format (text, json)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigFile)
	if err != nil {
		return err
	}

	// Explicit flags win over both the file and the environment.
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("mongo-uri") {
		cfg.MongoURI = serveMongoURI
	}
	if cmd.Flags().Changed("static-dir") {
		cfg.StaticDir = serveStaticDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = serveLogFormat
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.EndpointStore
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
		defer cancel()
		mongoStore, err := storage.ConnectMongo(connectCtx, cfg.MongoURI, "mockbay")
		if err != nil {
			return fmt.Errorf("connect to mongodb: %w", err)
		}
		defer func() { _ = mongoStore.Close(context.Background()) }()
		store = mongoStore
		log.Info("definitions persisted in mongodb")
	} else {
		store = storage.NewInMemoryEndpointStore()
		log.Info("definitions held in memory; they vanish on restart")
	}

	srv := server.New(cfg, store, server.WithLogger(log))
	return srv.Run(ctx)
}
