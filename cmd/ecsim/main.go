package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/l1jgo/ecskit/internal/config"
	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/ecs"
	"github.com/l1jgo/ecskit/internal/core/event"
	"github.com/l1jgo/ecskit/internal/core/handle"
	coresys "github.com/l1jgo/ecskit/internal/core/system"
	"github.com/l1jgo/ecskit/internal/data"
	"github.com/l1jgo/ecskit/internal/system"
	"github.com/l1jgo/ecskit/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ────────────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               ecsim  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      archetype registry simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int64) {
	numStr := printer.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/ecsim.toml"
	if p := os.Getenv("ECSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if stop := startProfile(cfg.Profile); stop != nil {
		defer stop()
	}

	printBanner()

	// 3. Registry
	printSection("registry")
	policy, _ := handle.ParseExpiryPolicy(cfg.Registry.ExpiryPolicy)
	counter, budget := newAllocator(cfg.Registry)
	reg, err := ecs.NewRegistry(cfg.Registry.Capacity,
		ecs.WithAllocator(counter),
		ecs.WithLogger(log.Named("ecs")),
		ecs.WithMaxViewTables(cfg.Registry.MaxViewTables),
		ecs.WithExpiryPolicy(policy),
	)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	defer reg.Close()
	printStat("capacity", int64(reg.Cap()))
	printStat("view table bound", int64(cfg.Registry.MaxViewTables))
	if budget != nil {
		printStat("memory budget (bytes)", budget.Limit())
	}
	printOK(fmt.Sprintf("expiry policy %s", policy))
	fmt.Println()

	// 4. Scenario
	printSection("scenario")
	scenario, err := data.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	printStat("groups", int64(scenario.Count()))

	bus := event.NewBus()
	ws, err := world.NewState(reg, bus, scenario, log.Named("world"))
	if err != nil {
		return err
	}
	initial, err := system.SpawnInitial(ws, scenario)
	if err != nil {
		return fmt.Errorf("initial spawn: %w", err)
	}
	printStat("initial entities", int64(initial))
	fmt.Println()

	// 5. Systems
	runner := coresys.NewRunner()
	dispatch := system.NewEventDispatchSystem(bus)
	runner.Register(dispatch)
	runner.Register(system.NewSpawnSystem(ws, scenario, log))
	runner.Register(system.NewMovementSystem(reg, log))
	runner.Register(system.NewLifetimeSystem(reg, bus, log))
	runner.Register(system.NewCleanupSystem(ws))

	// 6. Loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if cfg.Simulation.Ticks > 0 {
		printReady(fmt.Sprintf("running %d ticks (tick: %s)", cfg.Simulation.Ticks, cfg.Simulation.TickRate))
		for i := 0; i < cfg.Simulation.Ticks && ctx.Err() == nil; i++ {
			runner.Tick(cfg.Simulation.TickRate)
		}
	} else {
		printReady(fmt.Sprintf("running until interrupted (tick: %s)", cfg.Simulation.TickRate))
		ticker := time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ticker.C:
				runner.Tick(cfg.Simulation.TickRate)
			case <-ctx.Done():
				break loop
			}
		}
	}
	if ctx.Err() != nil {
		log.Info("interrupted", zap.Uint64("ticks", runner.Ticks()))
	}
	elapsed := time.Since(start)

	fmt.Println()
	printReport(reg, ws, dispatch, counter, runner.Ticks(), elapsed)
	return nil
}

// newAllocator builds the registry's allocator chain: an optional byte
// budget, spilling to the heap when budget_fallback is set, all wrapped in
// a counter for the report.
func newAllocator(cfg config.RegistryConfig) (*alloc.Counting, *alloc.Budget) {
	if cfg.MemoryBudget == 0 {
		return alloc.NewCounting(alloc.Heap{}), nil
	}
	budget := alloc.NewBudget(cfg.MemoryBudget)
	if cfg.BudgetFallback {
		return alloc.NewCounting(alloc.Fallback{Primary: budget, Secondary: alloc.Heap{}}), budget
	}
	return alloc.NewCounting(budget), budget
}

func startProfile(cfg config.ProfileConfig) func() {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "alloc":
		mode = profile.MemProfileAllocs
	default:
		return nil
	}
	p := profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook, profile.Quiet)
	return p.Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
