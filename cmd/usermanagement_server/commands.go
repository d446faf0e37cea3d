package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	adminAddr  string

	rootCmd = &cobra.Command{
		Use:   "usermanagement_server",
		Short: "User identity, presence and friendship service",
		Long: `usermanagement_server keeps online users and their friend graph in memory
in front of a MySQL or SQLite store, and delivers change notifications live
over websocket or through a per-user queue.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the periodic inactivity sweep (default)",
		RunE:  runServe,
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Ask a running server to evict inactive users now",
		RunE:  runSweep,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml (default: search configs/)")
	sweepCmd.Flags().StringVar(&adminAddr, "addr", "", "server address, host:port (default: from config)")
	rootCmd.AddCommand(serveCmd, sweepCmd)
}
