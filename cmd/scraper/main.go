package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"balanca/internal/app"
	"balanca/internal/config"
	"balanca/internal/export"
	"balanca/internal/history"
	"balanca/internal/observability"
)

// go run cmd/scraper/main.go
// go run cmd/scraper/main.go -mode=positional -xlsx=balanca.xlsx
func main() {
	mode := flag.String("mode", "", "Localização das tabelas: 'fingerprint' ou 'positional' (padrão: LOCATOR_MODE)")
	xlsx := flag.String("xlsx", "", "Caminho opcional para exportar os históricos em planilha")
	metrics := flag.Bool("metrics", false, "Expõe /metrics na METRICS_PORT durante a execução")
	flag.Parse()

	cfg := config.Load()
	if *mode != "" {
		cfg.LocatorMode = *mode
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metrics {
		observability.Start(cfg.MetricsPort)
	}

	svc, closeAll, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Erro ao iniciar o scraper: %v", err)
	}
	defer closeAll()

	res, err := svc.Update(ctx)
	if err != nil {
		closeAll()
		log.Fatalf("Falha na atualização: %v", err)
	}

	log.Printf("Histórico semanal: %d linhas | mensal: %d linhas (run=%s)",
		res.Semanal.Len(), res.Mensal.Len(), res.RunID)

	if *xlsx != "" {
		if err := export.SaveXLSX(*xlsx, history.NewView(res.Semanal), history.NewView(res.Mensal)); err != nil {
			log.Printf("Erro ao exportar planilha %s: %v", *xlsx, err)
		} else {
			log.Printf("Planilha gravada em %s", *xlsx)
		}
	}

	log.Println("Scraper finalizado")
}
