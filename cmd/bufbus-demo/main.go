// Command bufbus-demo runs a small buffered-emitter scenario: it subscribes
// a few handlers, accumulates an order inside a buffer, abandons a second
// buffer, and flushes the first.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/dshills/bufbus"
)

// demoConfig is the TOML configuration for the demo emitter.
type demoConfig struct {
	TTLSeconds               int  `toml:"ttl_seconds"`
	MaintenanceChancePercent int  `toml:"maintenance_chance_percent"`
	Debug                    bool `toml:"debug"`
}

var configFile = flag.String("config", "", "Path to TOML configuration file")

func main() {
	flag.Parse()

	cfg := demoConfig{
		TTLSeconds:               600,
		MaintenanceChancePercent: 10,
		Debug:                    false,
	}
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse config: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	emitter := bufbus.New(
		bufbus.WithTTL(time.Duration(cfg.TTLSeconds)*time.Second),
		bufbus.WithMaintenanceChance(cfg.MaintenanceChancePercent),
		bufbus.WithLogger(logger),
	)
	emitter.SetDebug(cfg.Debug)

	emitter.Subscribe("order.line", bufbus.NewHandler(func(args ...any) {
		ctx := args[len(args)-1].(map[string]any)
		logger.Info("order line",
			zap.Any("item", args[0]),
			zap.Any("qty", args[1]),
			zap.Any("user", ctx["user"]),
		)
	}))
	emitter.Subscribe(bufbus.EventBufferFlush, bufbus.NewHandler(func(args ...any) {
		logger.Info("buffer flushed", zap.Any("buffer", args[0]))
	}))
	emitter.Subscribe(bufbus.EventBufferClean, bufbus.NewHandler(func(args ...any) {
		logger.Info("buffer cleaned", zap.Any("buffer", args[0]))
	}))

	if err := emitter.CreateBuffer("checkout-42", map[string]any{"user": "ada"}); err != nil {
		logger.Fatal("create buffer failed", zap.Error(err))
	}
	emitter.EmitBuffered("checkout-42", "order.line", "widget", 2)
	emitter.EmitBuffered("checkout-42", "order.line", "gadget", 1)

	// A second buffer the caller walks away from.
	if err := emitter.CreateBuffer("checkout-43", map[string]any{"user": "bob"}); err != nil {
		logger.Fatal("create buffer failed", zap.Error(err))
	}
	emitter.EmitBuffered("checkout-43", "order.line", "doodad", 5)
	if _, err := emitter.CleanBuffer("checkout-43"); err != nil {
		logger.Fatal("clean buffer failed", zap.Error(err))
	}

	if _, err := emitter.Flush("checkout-42"); err != nil {
		logger.Fatal("flush failed", zap.Error(err))
	}

	logger.Info("done", zap.Int("live buffers", emitter.LiveBuffers()))
}
