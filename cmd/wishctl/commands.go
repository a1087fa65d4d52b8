package main

import (
	"context"

	"wishpact/contexts/community-experience/ranking-service/ports"
	"wishpact/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func reconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation sweep",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "deadlines",
			Short: "Resolve wishes whose deadline has passed",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
					return rt.Modules.Verification.DeadlineReconciler.RunOnce(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "treasury",
			Short: "Re-issue missing treasury credits for failed wishes",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
					return rt.Modules.Verification.TreasuryReconciler.RunOnce(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "outbox",
			Short: "Publish one batch of pending events",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
					published, err := rt.Relay().RunOnce(ctx)
					return map[string]int{"published": published}, err
				})
			},
		},
	)
	return cmd
}

func treasuryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treasury",
		Short: "Inspect the impact treasury",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print treasury totals and proposal counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Modules.Treasury.Handler.GetTreasuryStatsHandler(ctx)
			})
		},
	})
	return cmd
}

func leaderboardCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the supporter leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Modules.Ranking.Service.GetLeaderboard(ctx, ports.LeaderboardFilter{
					Limit:  limit,
					Offset: offset,
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "entries to print")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	return cmd
}

func proposalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Manage governance proposals",
	}
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List proposals, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Modules.Governor.Handler.ListProposalsHandler(ctx, status, 0)
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "close-expired",
			Short: "Close proposals whose voting period has ended",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
					return rt.Modules.Governor.Expiry.RunOnce(ctx)
				})
			},
		},
	)
	return cmd
}
