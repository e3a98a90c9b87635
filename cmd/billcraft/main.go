package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/niteshkumardubey/bill-craft/internal/api"
	"github.com/niteshkumardubey/bill-craft/internal/catalog"
	"github.com/niteshkumardubey/bill-craft/internal/config"
	"github.com/niteshkumardubey/bill-craft/internal/database"
	"github.com/niteshkumardubey/bill-craft/internal/directory"
	"github.com/niteshkumardubey/bill-craft/internal/ledger"
	"github.com/niteshkumardubey/bill-craft/internal/logging"
	"github.com/niteshkumardubey/bill-craft/internal/migrations"
)

func main() {
	_ = godotenv.Load()

	initSample := flag.Bool("init-sample", false, "create sample data and exit")
	backupPath := flag.String("backup", "", "back up the database to the given path and exit")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	ctx := context.Background()

	if *backupPath != "" {
		if err := database.Backup(ctx, db, *backupPath); err != nil {
			log.WithError(err).Fatal("backup failed")
		}
		log.WithField("path", *backupPath).Info("database backed up")
		return
	}

	if *initSample {
		products := catalog.New(db)
		pid, err := products.Add(ctx, catalog.AddProductParams{
			SKU: "SKU-001", Name: "Sample Widget", Price: "99.50", Cost: "60.00", ReorderLevel: 5,
		})
		if err != nil {
			log.WithError(err).Fatal("sample product failed")
		}
		if _, err := ledger.New(db).Record(ctx, pid, 20, "initial stock"); err != nil {
			log.WithError(err).Fatal("sample stock failed")
		}
		email, phone := "sales@acme.example", "+123456789"
		cid, err := directory.New(db).Add(ctx, directory.AddCustomerParams{
			Name: "Acme Corporation", Email: &email, Phone: &phone,
		})
		if err != nil {
			log.WithError(err).Fatal("sample customer failed")
		}
		log.WithFields(map[string]interface{}{"product_id": pid, "customer_id": cid}).Info("sample data created")
		return
	}

	handler := api.New(db, log)

	log.WithField("port", cfg.HTTPPort).Info("bill-craft server starting")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
