package main

import (
	"context"
	"log"
	"net/http"

	"balanca/internal/app"
	"balanca/internal/config"
	"balanca/internal/dashboard"
	"balanca/internal/observability"
)

func main() {
	cfg := config.Load()
	observability.Register()

	svc, closeAll, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Erro ao iniciar o dashboard: %v", err)
	}
	defer closeAll()

	srv := &dashboard.Server{Backend: svc, ViewsDir: cfg.ViewsDir}

	log.Printf("Dashboard da balança comercial rodando %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Routes()); err != nil {
		log.Fatalf("Erro no servidor HTTP: %v", err)
	}
}
