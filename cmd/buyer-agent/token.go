package main

import (
	"errors"
	"fmt"
	"time"

	"adte.com/adte/buyer-agent/internal/auth"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		readonly bool
		subject  string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token signed with JWT_SECRET_KEY",
		Long: `Mint a bearer token carrying the AdCP permission claims
(products, media_buys, creatives, reports) for testing sales agents that
share JWT_SECRET_KEY with this tool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Agent.JwtSecretKey == "" {
				return errors.New("JWT_SECRET_KEY environment variable not set")
			}

			perms := auth.FullAccess()
			if readonly {
				perms = auth.ReadOnly()
			}

			token, claims, err := auth.MintToken(a.cfg.Agent.JwtSecretKey, auth.TokenRequest{
				Subject:     subject,
				Permissions: perms,
				TTL:         ttl,
			})
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			a.logger.Info("minted bearer token",
				"subject", claims.Subject,
				"expires", claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
				"can_create_media_buy", perms.CanCreateMediaBuy(),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&readonly, "readonly", false, "grant read permissions only")
	cmd.Flags().StringVar(&subject, "subject", "principal_test", "token subject (principal ID)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
