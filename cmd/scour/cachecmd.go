package scour

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/varalys/scour/internal/cache"
)

func init() {
	cacheCmd := &cobra.Command{Use: "cache", Short: "Inspect or clear the persisted hash cache"}
	rootCmd.AddCommand(cacheCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show hash cache statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := cache.Load()
			if err != nil {
				if flagJSON {
					return json.NewEncoder(os.Stdout).Encode(map[string]any{"entries": 0})
				}
				fmt.Println("hash cache: empty")
				return nil
			}
			var bytes int64
			for _, e := range db.Entries {
				bytes += e.Size
			}
			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"entries":      len(db.Entries),
					"hashed_bytes": bytes,
				})
			}
			fmt.Printf("hash cache: %d entries covering %s of file content\n",
				len(db.Entries), humanize.IBytes(uint64(bytes)))
			return nil
		},
	}
	cacheCmd.AddCommand(statsCmd)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted hash cache",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Println("hash cache cleared")
			return nil
		},
	}
	cacheCmd.AddCommand(clearCmd)
}
