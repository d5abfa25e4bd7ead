package main

import (
	"context"
	"fmt"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/relib"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Load a store and run its integrity check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := backend.Open(ctx, args[0])
		if err != nil {
			return err
		}

		store := relib.NewTableStore()
		if err := store.LoadFromBackend(ctx, b, relib.DefaultLoadOptions()); err != nil {
			return fmt.Errorf("load: %w", err)
		}
		if err := store.CheckIntegrity(ctx); err != nil {
			return fmt.Errorf("integrity check failed: %w", err)
		}

		meta := store.MetaSnapshot()
		fmt.Printf("ok checksum=%s version=%d tables=%d\n", meta.Checksum, meta.Version, len(meta.Tables))
		return nil
	},
}
