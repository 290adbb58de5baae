package scour

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varalys/scour/internal/hash"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Check whether two files have identical content",
		Long:  "Compares sizes first, then the first 64 KiB, then full content hashes, so dissimilar files are rejected without a full read.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			calc := hash.New()
			same, err := calc.QuickCompare(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"a":         args[0],
					"b":         args[1],
					"identical": same,
				})
			}
			if same {
				fmt.Println("identical")
				return nil
			}
			fmt.Println("different")
			os.Exit(1)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
