package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/database"
	"github.com/taichu-system/tenancy-management/internal/di"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/router"
	"github.com/taichu-system/tenancy-management/internal/seed"
	"github.com/taichu-system/tenancy-management/internal/service/worker"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type runtime struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

// bootstrap 加载配置、初始化日志并连接数据库
func bootstrap(configPath string, migrate bool) (*runtime, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Logging.Level,
		ServiceName: "tenancy-management",
		Format:      cfg.Logging.Format,
		OutputPath:  cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Database.AutoCreateDB {
		created, err := database.CreateDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		if created {
			log.Info("Database created", zap.String("dbname", cfg.Database.DBName))
		}
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrate {
		applied, err := database.Migrate(db)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		for _, version := range applied {
			log.Info("Applied migration", zap.String("version", version))
		}
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (r *runtime) close() {
	_ = database.Close(r.db)
	_ = r.log.Sync()
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*configPath, false)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.Database.AutoMigrate {
				applied, err := database.Migrate(rt.db)
				if err != nil {
					return err
				}
				rt.log.Info("Database migration finished", zap.Strings("applied", applied))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := di.NewContainer(ctx, rt.cfg, rt.db, rt.log)
			if err != nil {
				return err
			}
			defer container.Close()

			if rt.cfg.Session.SweepEnabled && container.Sweeper != nil {
				sweeper := worker.NewSessionSweeper(container.Sweeper, rt.cfg.Session.SweepInterval, rt.log)
				sweeper.Start()
				defer sweeper.Stop()
			}

			if rt.cfg.Audit.Retention > 0 {
				pruner := worker.NewAuditPruner(container.AuditRepo, rt.cfg.Audit.Retention, rt.cfg.Audit.PruneInterval, rt.log)
				pruner.Start()
				defer pruner.Stop()
			}

			gin.SetMode(rt.cfg.Server.Mode)
			srv := &http.Server{
				Addr:         ":" + rt.cfg.Server.Port,
				Handler:      router.Setup(container),
				ReadTimeout:  rt.cfg.Server.ReadTimeout,
				WriteTimeout: rt.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info("Server starting", zap.String("port", rt.cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
			case <-ctx.Done():
			}

			rt.log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			rt.log.Info("Server exited")
			return nil
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*configPath, true)
			if err != nil {
				return err
			}
			defer rt.close()

			fmt.Println("All migrations completed successfully!")
			return nil
		},
	}
}

func createCaretakerCmd(configPath *string) *cobra.Command {
	var req model.CreateCaretakerRequest

	cmd := &cobra.Command{
		Use:   "create-caretaker",
		Short: "Provision a caretaker account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("TENANCY_CARETAKER_PASSWORD")
			}

			rt, err := bootstrap(*configPath, true)
			if err != nil {
				return err
			}
			defer rt.close()

			container, err := di.NewContainer(cmd.Context(), rt.cfg, rt.db, rt.log)
			if err != nil {
				return err
			}
			defer container.Close()

			user, err := container.AuthService.ProvisionCaretaker(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Caretaker %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (or TENANCY_CARETAKER_PASSWORD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func seedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load caretakers and units from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap(*configPath, true)
			if err != nil {
				return err
			}
			defer rt.close()

			container, err := di.NewContainer(cmd.Context(), rt.cfg, rt.db, rt.log)
			if err != nil {
				return err
			}
			defer container.Close()

			result, err := seed.NewSeeder(container.AuthService, container.UnitService, rt.log).Apply(cmd.Context(), fixture)
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %d caretakers and %d units (%d already present)\n",
				result.CaretakersCreated, result.UnitsCreated, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.example.yaml", "seed fixture file")
	return cmd
}
