package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizcard/internal/infrastructure/auth"
	"bizcard/internal/infrastructure/config"
	"bizcard/internal/shared/authorization"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/constants"
)

var (
	env        string
	configPath string
	operatorID string
	role       string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a back-office operator token",
		Long:  `Sign a bearer token for the admin payment endpoints using the configured JWT secret.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&operatorID, "operator", "", "Operator ID recorded as the actor in audit entries")
	cmd.Flags().StringVar(&role, "role", authorization.RoleOperator.String(), "Operator role (admin, operator)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_exp_minutes)")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	operatorRole, ok := authorization.ParseOperatorRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.Issuer)
	signed, expiresAt, err := svc.Generate(operatorID, operatorRole, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", biztime.FormatInBizTimezone(expiresAt, time.RFC3339))
	return nil
}
