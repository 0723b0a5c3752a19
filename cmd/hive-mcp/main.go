package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiveintelligencexyz/hive-mcp/internal/audit"
	"github.com/hiveintelligencexyz/hive-mcp/internal/config"
	"github.com/hiveintelligencexyz/hive-mcp/internal/hive"
	"github.com/hiveintelligencexyz/hive-mcp/internal/mcp"
	"github.com/hiveintelligencexyz/hive-mcp/internal/tool"
	"github.com/hiveintelligencexyz/hive-mcp/pkg/logger"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	cfgFile string
	showVer bool
)

var rootCmd = &cobra.Command{
	Use:   "hive-mcp",
	Short: "Hive Intelligence MCP server",
	Long: `An MCP server exposing crypto and Web3 intelligence search
over stdio, backed by the Hive Intelligence API.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVer {
			fmt.Printf("hive-mcp %s (built %s)\n", Version, BuildDate)
			return
		}

		cfg := config.Load(cfgFile)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		defer logger.Sync()

		logger.Info("starting server",
			zap.String("version", Version),
			zap.String("base_url", cfg.Hive.BaseURL),
			zap.Int("timeout_s", cfg.Hive.Timeout),
		)

		runServer(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "show version")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cfg *config.Config) {
	client := hive.NewClient(&cfg.Hive)

	srv := mcp.NewServer("hive-intelligence", Version)

	searchTool := tool.NewSearchTool(client)
	srv.RegisterTool(searchTool.Definition(), searchTool.Handle)

	if cfg.Audit.Enabled {
		store, err := audit.NewStore(cfg.Audit.Path)
		if err != nil {
			logger.Error("failed to open audit store", zap.Error(err))
			os.Exit(1)
		}
		defer store.Close()
		srv.SetAuditor(store)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, os.Stdin, os.Stdout)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	case <-quit:
		logger.Info("shutting down server...")
		cancel()
	}

	logger.Info("server stopped")
}
