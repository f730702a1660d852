package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/combokit/combotracker/internal/config"
	"github.com/combokit/combotracker/internal/overlay"
	"github.com/combokit/combotracker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the overlay directory without connecting to chat",
	Long: `Serves the existing overlay files over HTTP. Useful for positioning the
browser source in OBS before going live.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		log, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		srv := server.New(server.Config{Port: cfg.Server.Port, Dir: cfg.Overlay.Dir}, server.NewHub(log.Named("hub")), log.Named("server"))
		log.Infow("overlay page", "url", srv.URL()+"/"+overlay.HTMLFileName)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
