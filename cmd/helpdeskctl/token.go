package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/catalog"
)

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a catalog user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.LoadFile(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			user, ok := cat.FindUserByID(args[0])
			if !ok {
				return fmt.Errorf("user %q is not in the catalog", args[0])
			}
			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTL()
			}
			token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl).GenerateToken(user.ID, user.Role)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{
					"userId":    user.ID,
					"role":      user.Role,
					"token":     token,
					"expiresAt": expiresAt,
				})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	return cmd
}
