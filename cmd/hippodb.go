package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adfharrison1/hippodb/pkg/api"
	"github.com/adfharrison1/hippodb/pkg/metrics"
	"github.com/adfharrison1/hippodb/pkg/server"
	"github.com/adfharrison1/hippodb/pkg/storage"
)

// defaultDataDir reads HIPPODB_DIR, falling back to hippo_data.
func defaultDataDir() string {
	if dir := os.Getenv("HIPPODB_DIR"); dir != "" {
		return dir
	}
	return "hippo_data"
}

func main() {
	// Command line flags
	var (
		port           = flag.String("port", "8080", "Server port")
		dataDir        = flag.String("data-dir", defaultDataDir(), "Data directory for collection files (must exist and be writable)")
		format         = flag.String("format", "json", "Collection file format: json or packed")
		compression    = flag.String("compression", "lz4", "Compression for the packed format: lz4, zstd or none")
		verifyInterval = flag.Duration("verify-interval", 0, "Background verification interval (e.g., 5m, 30s). Set to 0 to disable.")
		rateLimit      = flag.Float64("rate-limit", 0, "Maximum requests per second. Set to 0 to disable.")
		rateBurst      = flag.Int("rate-burst", 50, "Burst size for the rate limiter")
		maxBatch       = flag.Int("max-batch", api.DefaultMaxBatchSize, "Maximum documents per batch insert")
		authFile       = flag.String("auth-file", "", "JSON file of application tokens; enables HTTP Basic auth when set")
		showHelp       = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nhippodb is a JSON document database with write-through persistence.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # Start with defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090 -data-dir /var/hippo   # Custom port and data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -format packed -compression zstd  # Compressed binary collection files\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -verify-interval 5m               # Check files against memory every 5 minutes\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate-limit 200 -rate-burst 400   # Limit request rate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -auth-file tokens.json            # Require application tokens\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  HIPPODB_DIR  default for -data-dir\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	c, err := storage.ParseCompression(*compression)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	codec, err := storage.CodecFor(*format, c)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	observer := metrics.NewPrometheusObserver()

	// Build storage options based on flags
	storageOptions := []storage.StorageOption{
		storage.WithDataDir(*dataDir),
		storage.WithCodec(codec),
		storage.WithMetrics(observer),
	}
	log.Printf("INFO: Using data directory: %s (format %s)", *dataDir, codec.Name())

	if *verifyInterval > 0 {
		storageOptions = append(storageOptions, storage.WithVerifyInterval(*verifyInterval))
		log.Printf("INFO: Background verification enabled: every %v", *verifyInterval)
	}

	// Recovery happens here; a missing, unwritable or corrupt data directory is fatal
	engine, err := storage.NewStorageEngine(storageOptions...)
	if err != nil {
		log.Fatalf("ERROR: Could not open data directory %s: %v", *dataDir, err)
	}

	serverOptions := []server.ServerOption{
		server.WithMaxBatchSize(*maxBatch),
		server.WithMetricsHandler(observer.Handler()),
	}
	if *rateLimit > 0 {
		serverOptions = append(serverOptions, server.WithRateLimit(*rateLimit, *rateBurst))
		log.Printf("INFO: Rate limit set to %.1f requests/s (burst %d)", *rateLimit, *rateBurst)
	}
	if *authFile != "" {
		creds, err := server.LoadCredentials(*authFile)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		serverOptions = append(serverOptions, server.WithAuth(creds))
		log.Printf("INFO: HTTP Basic auth enabled from %s", *authFile)
	}
	srv := server.NewServer(engine, serverOptions...)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:    ":" + *port,
		Handler: srv.Router(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting hippodb server on :%s", *port)
		log.Printf("API endpoints available at http://localhost:%s", *port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	// Writes are already durable; Close only stops the background workers
	engine.Close()

	log.Println("Server exited")
}
