package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List timed blocks persisted as active in the dashboard store",
	Long: `blocks prints every timed block the dashboard store still considers active,
including ones that are already past due and will be lifted on the next start.
It reads the store only and never touches the filter.`,
	RunE: runBlocks,
}

func runBlocks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	active, err := store.ListActive(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list timed blocks: %w", err)
	}
	return printBlocks(cmd.OutOrStdout(), active, time.Now().Unix())
}

// printBlocks writes one row per block, soonest expiry first.
func printBlocks(w io.Writer, blocks []domain.TimedBlock, now int64) error {
	if len(blocks) == 0 {
		_, err := fmt.Fprintln(w, "no active timed blocks")
		return err
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].ExpiresAt != blocks[j].ExpiresAt {
			return blocks[i].ExpiresAt < blocks[j].ExpiresAt
		}
		return blocks[i].ID < blocks[j].ID
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOMAIN\tEXPIRES\tREMAINING")
	for _, b := range blocks {
		remaining := "due"
		if r := b.Remaining(now); r > 0 {
			remaining = (time.Duration(r) * time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			b.ID,
			b.Domain,
			time.Unix(b.ExpiresAt, 0).UTC().Format(time.RFC3339),
			remaining,
		)
	}
	return tw.Flush()
}
