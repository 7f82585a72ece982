package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizcard/internal/infrastructure/config"
	"bizcard/internal/infrastructure/database"
	httpRouter "bizcard/internal/interfaces/http"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/constants"
	"bizcard/internal/shared/logger"
)

var (
	env        string
	configPath string
	timeout    time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile stale pending payments once",
		Long:  `Query the gateway for every pending payment older than sweeper.min_age and apply the result, then exit. Intended for cron or manual recovery when the in-process sweeper is disabled.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum duration of the sweep")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewComponentLogger("sweep")

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// The one-shot run owns the sweep; keep the container from scheduling another.
	cfg.Sweeper.Enabled = false

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer container.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := container.SweepPendingPayments(ctx)
	if err != nil {
		log.Errorw("sweep failed", "error", err)
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "checked=%d transitioned=%d resumed=%d failed=%d\n",
		result.Checked, result.Transitioned, result.Resumed, result.Failed)
	return nil
}
