package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/benvon/team-builder/internal/config"
	"github.com/benvon/team-builder/internal/database"
	"github.com/benvon/team-builder/internal/models"
	"github.com/benvon/team-builder/internal/ratelimit"
	"github.com/spf13/cobra"
)

const commandTimeout = 10 * time.Second

// NewRatelimitCmd creates the ratelimit command with list, set and usage subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage the team generation rate limit",
		Long:  "List or update the team generation rate (e.g. 5-D, 20-H) stored in the database, or show usage recorded in Redis.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	cmd.AddCommand(newRatelimitUsageCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			c, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}

			out := cmd.OutOrStdout()
			envRate := ratelimit.Rate{Limit: cfg.TeamsPerDayLimit, Period: cfg.RateLimitWindow}
			if c == nil {
				fmt.Fprintf(out, "No rate limit configuration in database; the server uses %s from the environment.\n", envRate)
				fmt.Fprintln(out, "Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "Rate limit configuration:")
			fmt.Fprintf(out, "  Rate: %s\n", c.Rate)
			fmt.Fprintf(out, "  Updated: %s\n", c.UpdatedAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the rate limit",
		Long:  "Update the team generation rate (e.g. 5-D, 20-H). Running servers pick it up on their next reload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-D, 20-H)")
			}
			if _, err := ratelimit.ParseRate(rate); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			c := &models.RatelimitConfig{Rate: rate}
			if err := database.NewRatelimitConfigRepository(db).Set(ctx, c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate limit configuration updated to %s.\n", c.Rate)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-D, 20-H, 100-M) (required)")
	return cmd
}

func newRatelimitUsageCmd() *cobra.Command {
	var day, identifier string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show allowed and denied generations for a day",
		Long:  "Read the rate limit analytics recorded in Redis. Defaults to today (UTC).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = time.Now().UTC().Format(ratelimit.DayLayout)
			}
			if _, err := time.Parse(ratelimit.DayLayout, day); err != nil {
				return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client, err := ratelimit.NewRedisClient(cfg.RedisURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			reader := ratelimit.NewUsageReader(client, cfg.RateLimitPrefix)
			return printUsage(ctx, cmd.OutOrStdout(), reader, day, identifier)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "Day to report (YYYY-MM-DD, UTC)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Only report this client identifier")
	return cmd
}

func printUsage(ctx context.Context, out io.Writer, reader *ratelimit.UsageReader, day, identifier string) error {
	if identifier != "" {
		u, err := reader.Identifier(ctx, day, identifier)
		if err != nil {
			return fmt.Errorf("read usage: %w", err)
		}
		fmt.Fprintf(out, "%s %s: allowed %d, denied %d\n", u.Day, u.Identifier, u.Allowed, u.Denied)
		return nil
	}

	total, err := reader.Day(ctx, day)
	if err != nil {
		return fmt.Errorf("read usage: %w", err)
	}
	perClient, err := reader.Identifiers(ctx, day)
	if err != nil {
		return fmt.Errorf("read usage: %w", err)
	}

	fmt.Fprintf(out, "Usage for %s: allowed %d, denied %d\n", total.Day, total.Allowed, total.Denied)
	if len(perClient) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tALLOWED\tDENIED")
	for _, u := range perClient {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", u.Identifier, u.Allowed, u.Denied)
	}
	return tw.Flush()
}
