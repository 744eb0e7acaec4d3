package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"autoapply/config"
	"autoapply/controllers"
	"autoapply/database"
	"autoapply/middleware"
	"autoapply/models"
	"autoapply/services"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "autoapply",
		Short:         "Apply to jobs with a headless browser",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newApplyCmd())
	return root
}

// runtime holds the long-lived engine pieces shared by both commands.
type runtime struct {
	cfg          config.AppConfig
	sessions     *services.SessionManager
	orchestrator *services.BatchOrchestrator
}

func newRuntime(cfg config.AppConfig) *runtime {
	sessions := services.NewSessionManager(services.BrowserOptions{
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Browser.UserAgent,
		CDPURL:    cfg.Browser.CDPURL,
	})

	var opts []services.EngineOption
	if cfg.Evidence.Enabled() {
		store, err := services.NewS3EvidenceStore(cfg.Evidence)
		if err != nil {
			log.Printf("Evidence screenshots disabled: %v", err)
		} else {
			opts = append(opts, services.WithEvidenceStore(store))
		}
	}

	engine := services.NewApplicationEngine(sessions, services.NewLLMContentGenerator(cfg.LLM), opts...)

	var notifier services.Notifier
	if cfg.Batch.NotifyByEmail {
		notifier = services.NewEmailNotificationService(cfg.SMTP)
	}

	return &runtime{
		cfg:          cfg,
		sessions:     sessions,
		orchestrator: services.NewBatchOrchestrator(sessions, engine, notifier, cfg.Batch.JobInterval),
	}
}

func (rt *runtime) close() {
	if err := rt.sessions.Shutdown(); err != nil {
		log.Printf("Browser shutdown: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the auto-apply HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			cfg := config.GetAppConfig()
			rt := newRuntime(cfg)
			defer rt.close()

			var store controllers.ResultStore
			if cfg.Database.Enabled() {
				db, err := database.Connect(ctx, cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				store, err = openResultStore(db)
				if err != nil {
					return err
				}
			} else {
				log.Printf("DB_NAME not set, application history is disabled")
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.Default()
			router.Use(cors.Default())
			router.Use(middleware.MaxRequestSize(1 << 20))
			router.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			limiters := middleware.CreateRateLimiters()
			defer func() {
				for _, rl := range limiters {
					rl.Stop()
				}
			}()
			auth := middleware.RequireAuth(services.NewJWTService(cfg.JWTSecret))
			controllers.NewAutoApplyController(rt.orchestrator, store, cfg.Batch.MaxJobs).
				RegisterRoutes(router, auth, limiters["apply"].Limit(), limiters["general"].Limit())

			srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
			go shutdownWhenDone(ctx, srv, 10*time.Second)

			log.Printf("Server starting on port %s", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// shutdownWhenDone drains srv once ctx is cancelled, waiting at most grace.
func shutdownWhenDone(ctx context.Context, srv *http.Server, grace time.Duration) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

func openResultStore(db *sql.DB) (controllers.ResultStore, error) {
	model := models.NewApplicationResultModel(db)
	if err := model.CreateTable(); err != nil {
		return nil, fmt.Errorf("failed to create results table: %w", err)
	}
	return model, nil
}

func newApplyCmd() *cobra.Command {
	var (
		batchPath string
		notify    bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply to every job in a YAML batch file and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := config.LoadBatchFile(batchPath)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			cfg := config.GetAppConfig()
			cfg.Batch.NotifyByEmail = notify
			jobs := batch.Jobs
			if len(jobs) > cfg.Batch.MaxJobs {
				log.Printf("Batch has %d jobs, only the first %d will be attempted", len(jobs), cfg.Batch.MaxJobs)
				jobs = jobs[:cfg.Batch.MaxJobs]
			}

			rt := newRuntime(cfg)
			defer rt.close()

			run, err := rt.orchestrator.Run(ctx, jobs, batch.Profile)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
	cmd.Flags().StringVarP(&batchPath, "batch", "b", "batch.yaml", "YAML file with profile and jobs")
	cmd.Flags().BoolVar(&notify, "notify", false, "email the batch report to the profile address")
	return cmd
}
