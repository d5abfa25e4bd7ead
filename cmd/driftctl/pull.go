package main

import (
	"context"
	"fmt"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/log"
	"github.com/driftstore/driftstore/pkg/reconcile"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/spf13/cobra"
)

var (
	pullLocalURL        string
	pullIgnoreIfModified bool
	pullForce            bool
)

var pullCmd = &cobra.Command{
	Use:   "pull <origin-url>",
	Short: "Pull a store from origin into a local working copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		originURL := args[0]

		originBackend, err := backend.Open(ctx, originURL)
		if err != nil {
			return err
		}

		local := relib.NewTableStore()
		localURL := pullLocalURL
		if localURL != "" {
			localBackend, err := backend.Open(ctx, localURL)
			if err != nil {
				return err
			}
			if err := local.LoadFromBackend(ctx, localBackend, relib.DefaultLoadOptions()); err != nil {
				log.WithComponent("driftctl").Warn().Err(err).Msg("no existing local copy, pulling fresh")
			}
		}

		result, err := reconcile.Pull(ctx, local, originBackend, nil, reconcile.PullOptions{
			IgnoreIfModified: pullIgnoreIfModified,
			Force:            pullForce,
		})
		if err != nil {
			return err
		}
		fmt.Printf("pulled=%v reason=%s checksum=%s\n", result.Pulled, result.Reason, result.TableStore.Checksum())

		if result.Pulled && pullLocalURL != "" {
			localBackend, err := backend.Open(ctx, pullLocalURL)
			if err != nil {
				return err
			}
			if err := result.TableStore.SaveToBackend(ctx, localBackend, relib.SaveOptions{RunIntegrityCheck: true}); err != nil {
				return fmt.Errorf("write pulled store to local: %w", err)
			}
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().StringVar(&pullLocalURL, "local", "", "backend URL for the local working copy (written on success)")
	pullCmd.Flags().BoolVar(&pullIgnoreIfModified, "ignore-if-modified", false, "pull even if local has been modified since last pull")
	pullCmd.Flags().BoolVar(&pullForce, "force", false, "pull even when checksums already match")
}
