package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tasky/model"
	"tasky/services"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWTSecret(); err != nil {
			return err
		}
		if tokenUser == "" {
			return fmt.Errorf("--user is required")
		}
		token, err := services.CreateAccessToken([]byte(cfg.JWTSecret), tokenUser, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id placed in the token")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", model.RoleAdmin, "role claim, admin grants mutation routes")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
