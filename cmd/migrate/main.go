// Package main prepares the database: it applies the schema, provisions the
// sequence counters and optionally seeds an administrator and demo data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"prodtrack/internal/config"
	"prodtrack/internal/core/apperror"
	appctx "prodtrack/internal/core/context"
	"prodtrack/internal/domain/auth"
	"prodtrack/internal/domain/catalogs/customer"
	"prodtrack/internal/domain/catalogs/product"
	"prodtrack/internal/domain/catalogs/route"
	"prodtrack/internal/domain/catalogs/workstation"
	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/internal/infrastructure/storage/postgres/auth_repo"
	"prodtrack/internal/infrastructure/storage/postgres/catalog_repo"
	"prodtrack/pkg/logger"
)

func main() {
	seedDemo := flag.Bool("demo", false, "seed demo customers, products, work stations and a route")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.PoolConfig)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, cfg.Postgres.TxOptions())

	if err := postgres.Bootstrap(ctx, txManager); err != nil {
		log.Fatalw("failed to bootstrap database", "error", err)
	}

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if *seedDemo {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("migration completed successfully")
}

// seedAdminUser creates the administrator named by PRODTRACK_ADMIN_EMAIL and
// PRODTRACK_ADMIN_PASSWORD. Nothing happens when either is unset or the user
// already exists.
func seedAdminUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	email := os.Getenv("PRODTRACK_ADMIN_EMAIL")
	password := os.Getenv("PRODTRACK_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Info("admin credentials not set, skipping admin seed")
		return nil
	}

	service := auth.NewService(auth_repo.NewUserRepo(txm), txm, nil, auth.DefaultServiceConfig())

	// Registration of administrators requires an administrator in context.
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "migrate", IsAdmin: true})

	name := "Administrator"
	user, err := service.Register(ctx, auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     &name,
		IsAdmin:  true,
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
			log.Infow("admin user already exists", "email", email)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "email", user.Email, "user_id", user.ID)
	return nil
}

// seedDemoData creates a small shop floor through the domain services so the
// usual validation applies.
func seedDemoData(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	log.Info("seeding demo data...")

	customerRepo := catalog_repo.NewCustomerRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	stationRepo := catalog_repo.NewWorkStationRepo(txm)

	customers := customer.NewService(customerRepo, txm)
	products := product.NewService(productRepo, txm)
	stations := workstation.NewService(stationRepo, txm)
	routes := route.NewService(catalog_repo.NewRouteRepo(txm), txm, productRepo, stationRepo)

	for _, name := range []string{"Acme Industrial", "Northwind Tools"} {
		if err := customers.Create(ctx, customer.NewCustomer(name)); err != nil {
			return fmt.Errorf("seed customer %q: %w", name, err)
		}
	}

	flange := product.NewProduct("Steel flange DN50")
	if err := products.Create(ctx, flange); err != nil {
		return fmt.Errorf("seed product: %w", err)
	}

	var steps []route.Step
	for i, name := range []string{"Saw", "Lathe", "Drill press", "Inspection"} {
		ws := workstation.NewWorkStation(name, nil)
		if err := stations.Create(ctx, ws); err != nil {
			return fmt.Errorf("seed work station %q: %w", name, err)
		}
		steps = append(steps, route.Step{StationID: ws.ID, Sequence: (i + 1) * 10})
	}

	if err := routes.Create(ctx, route.NewRoute("Flange standard", flange.ID, steps)); err != nil {
		return fmt.Errorf("seed route: %w", err)
	}

	log.Infow("demo data seeded",
		"customers", 2,
		"products", 1,
		"work_stations", len(steps),
	)
	return nil
}
