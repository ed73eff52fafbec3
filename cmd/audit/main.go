package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tallerpro/manufactura-api/internal/application/audit"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/events"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/postgres"
	"github.com/tallerpro/manufactura-api/pkg/config"
	"github.com/tallerpro/manufactura-api/pkg/logger"
)

// Auditor de consistencia offline: reproduce la historia del libro de
// movimientos por ítem y la compara contra la existencia almacenada.
// Con --repair publica un asiento correctivo (source=SYSTEM) por ítem con
// deriva; cada reparación corre en su propia transacción.
func main() {
	itemCode := flag.String("item-code", "", "Opcional: auditar solo este código de ítem (requiere --tier)")
	tier := flag.String("tier", "", "Opcional: RAW | SEMI | FINISHED (vacío = todos)")
	repair := flag.Bool("repair", false, "Publicar asientos correctivos para las derivas encontradas")
	continueOnError := flag.Bool("continue-on-error", false, "Seguir con los demás ítems si uno falla")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	publisher := events.NewLogPublisher(log)
	auditor := audit.NewAuditUseCase(txRunner, itemRepo, movementRepo, publisher)

	var reports []*audit.ItemReport
	if strings.TrimSpace(*itemCode) != "" {
		if *tier == "" {
			fmt.Fprintln(os.Stderr, "--item-code requiere --tier")
			os.Exit(1)
		}
		item, err := itemRepo.GetByCode(*tier, strings.TrimSpace(*itemCode))
		if err != nil {
			log.Fatal().Err(err).Msg("buscar ítem")
		}
		if item == nil {
			fmt.Fprintf(os.Stderr, "ítem %s/%s no encontrado\n", *tier, *itemCode)
			os.Exit(1)
		}
		var report *audit.ItemReport
		if *repair {
			report, err = auditor.RepairItem(ctx, item.ID, "auditoría por línea de comandos")
		} else {
			report, err = auditor.AuditItem(ctx, item.ID)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("auditar ítem")
		}
		reports = append(reports, report)
	} else {
		reports, err = auditor.Sweep(ctx, *tier, *repair, *continueOnError)
		if err != nil && !*continueOnError {
			printReports(reports)
			log.Fatal().Err(err).Msg("barrido de auditoría")
		}
		if err != nil {
			log.Error().Err(err).Msg("barrido terminó con ítems fallidos")
		}
	}

	printReports(reports)

	drifted := 0
	for _, r := range reports {
		if r.Drifted {
			drifted++
		}
	}
	log.Info().
		Int("items", len(reports)).
		Int("drifted", drifted).
		Bool("repair", *repair).
		Msg("auditoría finalizada")
	if drifted > 0 && !*repair {
		os.Exit(2)
	}
}

func printReports(reports []*audit.ItemReport) {
	for _, r := range reports {
		status := "ok"
		if r.Drifted {
			status = "DERIVA"
			if r.Repaired {
				status = "reparado"
			}
		}
		fmt.Printf("%-10s %-20s almacenado=%-12s reproducido=%-12s deriva=%-10s violaciones_cadena=%d\n",
			status, r.Code, r.Stored.String(), r.Replayed.String(), r.Drift.String(), len(r.ChainViolations))
	}
}
