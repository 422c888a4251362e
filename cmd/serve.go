package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acvora/acvora/internal/server"
	"github.com/acvora/acvora/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the filtered catalog and exam dashboard as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		refresh, _ := cmd.Flags().GetInt("refresh")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		srv := server.New(client, viper.GetString("server.username"), viper.GetString("server.password"), utils.Log)
		srv.Refresh = time.Duration(refresh) * time.Minute

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Start(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("refresh", 30, "Minutes between catalog reloads (0 to disable)")
}
