// Package main provides the local development server for the site.
//
// It mimics static hosting: directories serve their index.html and
// unknown paths serve the root 404.html.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/zilpatel/site-devserver/internal/config"
	"github.com/zilpatel/site-devserver/internal/devserver"
	"github.com/zilpatel/site-devserver/internal/nav"
)

func main() {
	port := flag.Int("port", config.DefaultPort, "Port to serve on")
	host := flag.String("host", "", "Interface to listen on (empty for all)")
	dir := flag.String("dir", ".", "Directory to serve")
	configPath := flag.String("config", "", "Config file (default: devserver.toml or devserver.yaml in -dir)")
	cleanURLs := flag.Bool("clean-urls", false, "Serve /page from /page.html")
	injectNav := flag.Bool("inject-nav", false, "Inject the shared navigation bar into HTML pages")
	contain := flag.Bool("contain", true, "Reject paths that resolve outside the served directory")
	quiet := flag.Bool("quiet", false, "Disable the access log")
	flag.Parse()

	cfg, err := loadConfig(*dir, *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// explicitly set flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "dir":
			cfg.Root = *dir
		case "clean-urls":
			cfg.CleanURLs = *cleanURLs
		case "inject-nav":
			cfg.InjectNav = *injectNav
		case "contain":
			cfg.ContainPaths = *contain
		case "quiet":
			cfg.AccessLog = !*quiet
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	handler, err := newHandler(cfg)
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	printBanner(cfg)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}

// loadConfig layers defaults, the config file and the environment.
func loadConfig(dir, path string) (config.Config, error) {
	cfg := config.Default()
	cfg.Root = dir

	if path == "" {
		path, _ = config.Discover(dir)
	}
	if path != "" {
		if err := cfg.Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(dir); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newHandler(cfg config.Config) (http.Handler, error) {
	opts := devserver.Options{
		Root:         cfg.Root,
		ContainPaths: cfg.ContainPaths,
		CleanURLs:    cfg.CleanURLs,
	}
	if cfg.InjectNav {
		opts.Rewrite = nav.NewInjector(cfg.Nav.Links).Rewrite
	}

	h, err := devserver.NewHandler(opts)
	if err != nil {
		return nil, err
	}
	if cfg.AccessLog {
		return devserver.LogRequests(h), nil
	}
	return h, nil
}

func printBanner(cfg config.Config) {
	bold := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	fmt.Println()
	bold.Printf("🚀 Server running at %s\n", cfg.URL())
	fmt.Printf("📁 Serving files from: %s\n", cfg.Root)
	fmt.Printf("✨ Custom %s support enabled\n", devserver.FallbackDocument)
	if cfg.InjectNav {
		fmt.Println("🧭 Navigation injection enabled")
	}
	if !cfg.ContainPaths {
		color.Yellow("⚠ Path containment disabled: requests may read outside %s", cfg.Root)
	}
	fmt.Println()

	fmt.Println("Try these URLs:")
	dim.Printf("  - %sblog/ (directory index)\n", cfg.URL())
	if cfg.CleanURLs {
		dim.Printf("  - %sblog/welcome (clean URL)\n", cfg.URL())
	}
	dim.Printf("  - %sblog/welcome.html (with extension)\n", cfg.URL())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}
