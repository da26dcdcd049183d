package main

import (
	"context"
	"fmt"

	"orchid-shop/internal/client"
	"orchid-shop/internal/config"
	"orchid-shop/internal/logger"
	"orchid-shop/internal/repository"
	"orchid-shop/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

// boot loads config, builds the logger and opens the database.
func boot() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := client.InitDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = a.log.Sync()
}

// seed creates the roles and, when configured, the admin account.
func (a *app) seed(ctx context.Context, withCatalog bool) error {
	roleRepo := repository.NewRoleRepository(a.db)
	accountRepo := repository.NewAccountRepository(a.db)

	if err := service.NewRoleService(roleRepo, accountRepo).Seed(ctx); err != nil {
		return err
	}
	if err := service.NewAccountService(accountRepo, roleRepo, a.log).EnsureAdmin(ctx, a.cfg.Admin); err != nil {
		return err
	}
	if withCatalog {
		orchidRepo := repository.NewOrchidRepository(a.db)
		categoryRepo := repository.NewCategoryRepository(a.db)
		detailRepo := repository.NewOrderDetailRepository(a.db)
		if err := service.NewOrchidService(orchidRepo, categoryRepo, detailRepo).SeedCatalog(ctx); err != nil {
			return err
		}
	}
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		if err := client.Migrate(a.db); err != nil {
			return err
		}
		a.log.Info("schema migrated", zap.String("driver", a.cfg.Database.Driver))
		return nil
	},
}

var seedCatalog bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, the admin account and optionally a sample catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		if err := client.Migrate(a.db); err != nil {
			return err
		}
		if err := a.seed(cmd.Context(), seedCatalog); err != nil {
			return err
		}
		a.log.Info("seed complete", zap.Bool("catalog", seedCatalog))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedCatalog, "catalog", true, "also seed sample categories and orchids")
}
