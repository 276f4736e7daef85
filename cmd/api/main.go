package main

import (
	"net/http"
	"os"
	"time"

	"dairy-herd-service/internal/adapters/auth/supabase"
	"dairy-herd-service/internal/adapters/billing/plans"
	"dairy-herd-service/internal/platform/logger"
	"dairy-herd-service/internal/ports/auth"
	"dairy-herd-service/internal/router"
)

func main() {
	lg := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin SUPABASE_URL el verifier queda nil y se aceptan headers X-Debug-* (modo dev).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("SUPABASE_URL"); baseURL != "" {
		client, err := supabase.NewClient(supabase.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("SUPABASE_ANON_KEY"),
			Timeout: 5 * time.Second,
		})
		if err != nil {
			lg.Error("supabase client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = supabase.NewVerifier(client)
	}

	var planResolver *plans.Resolver
	if baseURL := os.Getenv("PLANS_URL"); baseURL != "" {
		client, err := plans.NewClient(plans.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("PLANS_API_KEY"),
			Timeout: 5 * time.Second,
		})
		if err != nil {
			lg.Error("plans client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		planResolver = plans.NewResolver(client)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Plans:        planResolver,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
