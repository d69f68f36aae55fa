package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"agentic-reasoning-be/internal/bootstrap"
	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/server"
	"agentic-reasoning-be/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(ctx, cfg.Observability, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, cfg, sysLogger)
	defer container.Close()

	// 4. Start Background Services
	if err := container.SessionStreamService.Consume(ctx); err != nil {
		log.Panicf("Unable to start session stream: %v", err)
	}

	// Build the engine up front so a broken local engine fails at boot.
	if _, mode, err := container.Resolver.Resolve(ctx); err != nil {
		log.Panicf("Unable to construct reasoning engine: %v", err)
	} else {
		sysLogger.Info("Main", "Reasoning backend selected", map[string]interface{}{"mode": mode})
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
