package scour

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/varalys/scour/internal/audit"
)

func init() {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past scans, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			records, err := audit.NewLog().LoadHistory()
			if err != nil {
				if flagJSON {
					return json.NewEncoder(os.Stdout).Encode([]audit.ScanRecord{})
				}
				fmt.Println("no scan history")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(records)
			}
			for _, r := range records {
				fmt.Printf("%s  %-9s  %d groups, %s wasted  %s  (%s)\n",
					r.Timestamp.Format("2006-01-02 15:04"),
					r.Status,
					r.TotalGroups,
					humanize.IBytes(uint64(r.WastedBytes)),
					strings.Join(r.Roots, " "),
					r.Duration)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many records (0 = all)")
	rootCmd.AddCommand(cmd)
}
