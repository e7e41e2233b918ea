package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/kuns-os/wallset"
	"github.com/kuns-os/wallset/internal/cliconfig"
)

var longHelp = strings.TrimSpace(`
wallset waits for the Enlightenment session to come up, then sets the desktop
background from a prioritized list of candidate wallpapers, falling back
through alternative apply strategies until one takes.

Highlights:
  - Runs unattended from session autostart; a second instance exits cleanly.
  - Candidates, delays, and retry bounds configurable via file, env, or flags.
  - Appends a timestamped record of every step to ~/.wallpaper-setup.log.
`)

var exampleUsage = strings.TrimSpace(`
  wallset
  wallset --watch
  wallset --config $HOME/.wallset/config.toml --zone 1
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "wallset",
		Short:   "Set the desktop wallpaper once the session is ready",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.wallset/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (WALLSET_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Fill Home and Display from the environment if needed
			if err := cliconfig.LoadSessionInfo(&cfg); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			runLog, closeLog := cliconfig.OpenRunLogger(cfg)
			defer closeLog.Close()

			runLog.Debug().Interface("config", cfg).Msg("configuration")

			// Cancel the run context on SIGINT/SIGTERM so the lock cleanup
			// still fires when the session kills us.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					runLog.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
					cancel()
				case <-ctx.Done():
				}
			}()

			err := wallset.Run(ctx, cfg, wallset.WithLogger(runLog))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.wallset/config.toml)")
	root.Flags().StringVar(&cfg.Home, "home", "", "session home directory (defaults to the current user's home)")
	root.Flags().StringVar(&cfg.Remote, "remote", cfg.Remote, "session remote control command")
	root.Flags().IntVar(&cfg.Zone, "zone", cfg.Zone, "zone used by the zone-qualified fallback")
	root.Flags().StringSliceVar(&cfg.Candidates, "candidates", nil, "candidate wallpapers in priority order (defaults to the built-in list)")

	root.Flags().DurationVar(&cfg.InitialDelay, "initial-delay", cfg.InitialDelay, "settle time before the first readiness probe")
	root.Flags().DurationVar(&cfg.ReadyInterval, "ready-interval", cfg.ReadyInterval, "spacing between readiness probes")
	root.Flags().IntVar(&cfg.ReadyAttempts, "ready-attempts", cfg.ReadyAttempts, "maximum readiness probes before giving up")
	root.Flags().DurationVar(&cfg.GraceDelay, "grace-delay", cfg.GraceDelay, "extra wait after the desktop answers")
	root.Flags().DurationVar(&cfg.ZoneRetryDelay, "zone-retry-delay", cfg.ZoneRetryDelay, "wait before the zone-qualified fallback")
	if err := root.Flags().MarkHidden("zone-retry-delay"); err != nil {
		log.Info().Err(err).Msg("failed to hide zone-retry-delay flag")
	}
	root.Flags().DurationVar(&cfg.RestartSettleDelay, "restart-settle-delay", cfg.RestartSettleDelay, "wait after a shell restart before retrying")
	if err := root.Flags().MarkHidden("restart-settle-delay"); err != nil {
		log.Info().Err(err).Msg("failed to hide restart-settle-delay flag")
	}
	root.Flags().DurationVar(&cfg.CommandTimeout, "timeout", cfg.CommandTimeout, "timeout for a single remote command")

	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "keep running and reapply when a candidate file changes")
	root.Flags().DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "quiet window after a candidate change")
	if err := root.Flags().MarkHidden("watch-debounce"); err != nil {
		log.Info().Err(err).Msg("failed to hide watch-debounce flag")
	}

	root.Flags().StringVar(&cfg.LockPath, "lock-file", "", "lock file path (default: <home>/.wallpaper-setup.lock)")
	root.Flags().StringVar(&cfg.LogPath, "log-file", "", "log file path (default: <home>/.wallpaper-setup.log)")
	root.Flags().IntVar(&cfg.LogMaxSizeMB, "log-max-size", cfg.LogMaxSizeMB, "rotate the log file past this many megabytes")
	root.Flags().IntVar(&cfg.LogMaxBackups, "log-max-backups", cfg.LogMaxBackups, "rotated log files to keep")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "log at debug level")
	root.Flags().BoolVar(&cfg.NoLogFile, "no-log-file", cfg.NoLogFile, "log to stderr only")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("wallset")
		os.Exit(1)
	}
}
