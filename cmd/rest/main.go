package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"school-chatbot-be/internal/bootstrap"
	"school-chatbot-be/internal/config"
	"school-chatbot-be/internal/server"
	"school-chatbot-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Tracer is a no-op unless OTEL_ENABLED=true
	shutdownTracer := tracer.InitTracer(context.Background(), cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Start Background Services
	// outlives the signal so drained requests still reach the chat log
	stopTranscripts, err := container.StartTranscriptConsumer()
	if err != nil {
		log.Fatalf("[FATAL] Failed to start transcript consumer: %v", err)
	}

	// 4. Embed documents before accepting traffic
	if err := container.LoadDocuments(ctx); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	drained := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("[WARN] Server shutdown: %v", err)
		}
		close(drained)
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("[ERROR] Server stopped: %v", err)
	}
	// Listen returns as soon as shutdown starts; wait for in-flight chats
	if ctx.Err() != nil {
		<-drained
	}
	stopTranscripts()
}
