package wallset_test

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kuns-os/wallset"
)

// ExampleRun demonstrates a one-shot wallpaper setup.
func ExampleRun() {
	cfg := wallset.DefaultConfig()
	if err := wallset.LoadSessionInfo(&cfg); err != nil {
		fmt.Printf("session info: %v\n", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("config: %v\n", err)
		return
	}

	if err := wallset.Run(context.Background(), cfg, wallset.WithLogger(wallset.Logger())); err != nil {
		fmt.Printf("setup failed: %v\n", err)
	}
}

// Example_watchMode demonstrates keeping the wallpaper applied as candidate
// files change, until the process is told to stop.
func Example_watchMode() {
	cfg := wallset.DefaultConfig()
	if err := wallset.LoadSessionInfo(&cfg); err != nil {
		fmt.Printf("session info: %v\n", err)
		return
	}
	cfg.Watch = true
	if err := cfg.Validate(); err != nil {
		fmt.Printf("config: %v\n", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := wallset.Run(ctx, cfg, wallset.WithLogger(wallset.Logger())); err != nil && ctx.Err() == nil {
		fmt.Printf("setup failed: %v\n", err)
	}
}

// Example_customCandidates demonstrates overriding the search order.
func Example_customCandidates() {
	cfg := wallset.DefaultConfig()
	cfg.Home = "/home/kuns"
	cfg.Candidates = []string{
		"/home/kuns/Pictures/wallpaper.png",
		"/usr/share/backgrounds/default-wallpaper.png",
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("config: %v\n", err)
		return
	}

	_ = wallset.Run(context.Background(), cfg)
}
