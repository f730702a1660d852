package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/combokit/combotracker/internal/combo"
	"github.com/combokit/combotracker/internal/config"
	"github.com/combokit/combotracker/internal/emotes"
	"github.com/combokit/combotracker/internal/irc"
	"github.com/combokit/combotracker/internal/overlay"
	"github.com/combokit/combotracker/internal/progress"
	"github.com/combokit/combotracker/internal/report"
	"github.com/combokit/combotracker/internal/server"
	"github.com/combokit/combotracker/internal/store"
	"github.com/combokit/combotracker/internal/tracker"
)

// cachePruneAge is how long an unused emote image stays cached.
const cachePruneAge = 30 * 24 * time.Hour

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to chat and drive the overlay",
	Long: `Connects to the configured Twitch channel, tracks combos in chat, and
keeps the overlay files up to date until interrupted. A session report
is written on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(dbFile)
		if err != nil {
			return err
		}
		defer st.Close()

		// Providers are queried once at startup. The merged set is
		// snapshotted so a run with every provider API down still knows
		// the emotes from last time.
		channel := emotes.Channel{Name: cfg.Twitch.Channel, ID: cfg.Twitch.ChannelID}
		known := emotes.FetchAll(ctx, buildProviders(cfg), channel, progress.NewReporter(), log)
		setPath := filepath.Join(cfg.Emotes.CacheDir, emotes.SetFileName)
		if len(known) > 0 {
			if err := emotes.SaveSet(setPath, known); err != nil {
				log.Warnw("failed to snapshot emote set", "error", err)
			}
		} else if cached, err := emotes.LoadSet(setPath); err == nil && len(cached) > 0 {
			log.Infow("using cached emote set", "count", len(cached))
			known = cached
		}

		ov := overlay.New(filepath.Join(cfg.Overlay.Dir, overlay.DataFileName), cfg.Overlay.Template, log.Named("overlay"))
		if err := writeOverlayPage(cfg, ov); err != nil {
			return err
		}

		combos := combo.NewManager(combo.Options{
			DefaultTimeout:       time.Duration(cfg.Combos.TimeoutSeconds) * time.Second,
			Display:              time.Duration(cfg.Combos.DisplaySeconds) * time.Second,
			AllowMultiplePerUser: cfg.Combos.AllowMultiplePerUser,
			Log:                  log.Named("combo"),
		})
		combos.Start()
		defer combos.Stop()

		hub := server.NewHub(log.Named("hub"))
		cache := emotes.NewCache(cfg.Emotes.CacheDir, filepath.Join(cfg.Overlay.Dir, "emotes"), log.Named("emotes"))
		if _, err := cache.Prune(cachePruneAge); err != nil {
			log.Warnw("emote cache prune failed", "error", err)
		}

		tr := tracker.New(tracker.Options{
			Combos:             combos,
			Overlay:            ov,
			MaxItems:           cfg.Overlay.MaxItems,
			MinWordLength:      cfg.Combos.MinWordLength,
			MaxWordsPerMessage: cfg.Combos.MaxWordsPerMessage,
			Known:              known,
			KnownEmotesPath:    filepath.Join(cfg.Emotes.CacheDir, "known_emotes.txt"),
			MutePatterns:       cfg.Emotes.MutePatterns,
			Store:              st,
			Cache:              cache,
			Notifier:           hub,
			Log:                log.Named("tracker"),
		})

		sessionID, err := st.BeginSession(cfg.Twitch.Channel)
		if err != nil {
			log.Warnw("failed to begin session", "error", err)
		}

		var srv *server.Server
		if cfg.Server.Enabled {
			srv = server.New(server.Config{Port: cfg.Server.Port, Dir: cfg.Overlay.Dir}, hub, log.Named("server"))
			go func() {
				if err := srv.Start(); err != nil {
					log.Errorw("overlay server failed", "error", err)
				}
			}()
			log.Infow("overlay page", "url", srv.URL()+"/"+overlay.HTMLFileName)
		}

		client := irc.NewClient(irc.Options{
			Nickname: cfg.Twitch.Nickname,
			Token:    cfg.Twitch.Token,
			Channel:  cfg.Twitch.Channel,
			Log:      log.Named("irc"),
		})
		runErr := client.Run(ctx, tr.Process)

		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warnw("server shutdown failed", "error", err)
			}
			cancel()
		}

		stats := tr.Stats()
		if sessionID != "" {
			if err := st.EndSession(sessionID, stats.Messages, stats.TopWord, stats.TopCount); err != nil {
				log.Warnw("failed to end session", "error", err)
			}
		}
		if err := writeSessionReport(st, cfg.Overlay.Dir); err != nil {
			log.Warnw("failed to write session report", "error", err)
		}

		// Leave the overlay empty rather than showing stale combos the
		// next time the page loads.
		ov.CreateEmpty()

		log.Infow("session finished", "messages", stats.Messages, "top_word", stats.TopWord, "top_count", stats.TopCount)
		return runErr
	},
}

// buildProviders instantiates the configured emote providers.
func buildProviders(cfg *config.Config) []emotes.Provider {
	var out []emotes.Provider
	for _, name := range cfg.Emotes.Providers {
		switch name {
		case config.ProviderTwitch:
			out = append(out, emotes.NewTwitch())
		case config.ProviderBTTV:
			out = append(out, emotes.NewBTTV(""))
		case config.ProviderFFZ:
			out = append(out, emotes.NewFFZ(""))
		case config.ProviderSevenTV:
			out = append(out, emotes.NewSevenTV(""))
		}
	}
	return out
}

// writeOverlayPage writes overlay.html, either from the configured
// custom template or from the built-in page.
func writeOverlayPage(cfg *config.Config, ov *overlay.Manager) error {
	if cfg.Overlay.Template != "" {
		if !ov.CreateHTML() {
			return fmt.Errorf("writing overlay page from template %s", cfg.Overlay.Template)
		}
		return nil
	}

	wsPath := ""
	if cfg.Server.Enabled {
		wsPath = server.WSPath
	}
	return overlay.WritePage(filepath.Join(cfg.Overlay.Dir, overlay.HTMLFileName), overlay.PageOptions{
		Position: cfg.Overlay.Position,
		Scale:    cfg.Overlay.Scale,
		Font:     cfg.Overlay.Font,
		WSPath:   wsPath,
	})
}

// writeSessionReport renders the latest session into the overlay dir.
func writeSessionReport(st *store.Store, dir string) error {
	sess, err := st.LatestSession()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	top, err := st.TopWords(10)
	if err != nil {
		return err
	}
	return report.Write(dir, report.Data{
		Channel:   sess.Channel,
		StartedAt: sess.StartedAt,
		EndedAt:   sess.EndedAt,
		Messages:  sess.Messages,
		TopWords:  top,
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
}
