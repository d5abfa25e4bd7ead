package main

import (
	"context"
	"fmt"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/reconcile"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/spf13/cobra"
)

var pushForce bool

var pushCmd = &cobra.Command{
	Use:   "push <local-url> <origin-url>",
	Short: "Push a local working copy to origin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		localURL, originURL := args[0], args[1]

		localBackend, err := backend.Open(ctx, localURL)
		if err != nil {
			return err
		}
		local := relib.NewTableStore()
		if err := local.LoadFromBackend(ctx, localBackend, relib.DefaultLoadOptions()); err != nil {
			return fmt.Errorf("load local store: %w", err)
		}

		originBackend, err := backend.Open(ctx, originURL)
		if err != nil {
			return err
		}

		result, err := reconcile.Push(ctx, local, originBackend, reconcile.PushOptions{Force: pushForce})
		if err != nil {
			return err
		}
		fmt.Printf("pushed=%v reason=%s\n", result.Pushed, result.Reason)
		if !result.Pushed {
			return fmt.Errorf("push refused: %s", result.Reason)
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushForce, "force", false, "overwrite a diverged origin")
}
