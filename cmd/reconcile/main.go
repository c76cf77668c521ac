// Command reconcile regenerates missing receipt numbers and checks every
// order's paid amount against its receipts, then exits.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/config"
	"github.com/sangkips/studio-ledger/internal/infrastructure/database"
	"github.com/sangkips/studio-ledger/internal/infrastructure/repository"
	"github.com/sangkips/studio-ledger/pkg/logger"
	"github.com/sangkips/studio-ledger/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	fs := ff.NewFlagSet("reconcile")
	var (
		repair  = fs.BoolLong("repair", "set paid amounts to the sum of their receipts")
		asJSON  = fs.BoolLong("json", "print the report as JSON")
		timeout = fs.DurationLong("timeout", 10*time.Minute, "abort the run after this long")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECONCILE")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.New(cfg.App.Name+"-reconcile", cfg.App.IsProduction(), cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := database.NewDB(&cfg.Database, false, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	recon := service.NewReconciliationService(
		repository.NewLedgerRepository(db, cfg.Ledger.LockTimeout),
		log,
		metrics.NewLedger(nil),
		service.RetryPolicy{MaxRetries: cfg.Ledger.MaxRetries, Backoff: cfg.Ledger.RetryBackoff},
	)

	report, err := recon.Run(ctx, *repair)
	if err != nil {
		log.Fatal("reconciliation failed", zap.Error(err))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		fmt.Printf("order numbers repaired:   %d\n", report.OrderNumbersRepaired)
		fmt.Printf("receipt numbers repaired: %d\n", report.ReceiptNumbersRepaired)
		fmt.Printf("orders checked:           %d\n", report.OrdersChecked)
		fmt.Printf("balance mismatches:       %d\n", len(report.Mismatches))
		for _, m := range report.Mismatches {
			fmt.Printf("  %s paid=%s receipts=%s total=%s repaired=%t\n",
				m.Order, m.Paid.StringFixed(2), m.ReceiptSum.StringFixed(2), m.Total.StringFixed(2), m.Repaired)
		}
	}

	if len(report.Mismatches) > 0 && !*repair {
		os.Exit(1)
	}
}
