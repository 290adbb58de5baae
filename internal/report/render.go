// Package report renders duplicate scan results for terminals and pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/varalys/scour/internal/types"
)

// PrintOptions controls rendering.
type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned uint64
	FilesSkipped uint64
	MaxGroups    int // 0 = all
}

// PrintTable renders groups as a bordered table, largest waste first.
func PrintTable(w io.Writer, result types.DuplicateResult, opts PrintOptions) {
	groups := limitGroups(result.Groups, opts.MaxGroups)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicates found ✅")
		printFooter(w, result, opts)
		return
	}

	table := tablewriter.NewTable(w)
	table.Header("#", "Files", "Size", "Wasted", "Original")
	for i, g := range groups {
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(g.Files)),
			humanize.IBytes(uint64(g.Size)),
			humanize.IBytes(uint64(g.WastedSpace)),
			truncatePath(originalPath(g), pathBudget()),
		})
	}
	_ = table.Render()
	printFooter(w, result, opts)
}

// PrintText renders groups in plain columnar format, every member listed.
func PrintText(w io.Writer, result types.DuplicateResult, opts PrintOptions) {
	groups := limitGroups(result.Groups, opts.MaxGroups)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicates found ✅")
		printFooter(w, result, opts)
		return
	}
	for i, g := range groups {
		wasted := humanize.IBytes(uint64(g.WastedSpace))
		if !opts.NoColor {
			wasted = "\x1b[31m" + wasted + "\x1b[0m" // red
		}
		fmt.Fprintf(w, "group %d: %d files × %s, wasted %s\n",
			i+1, len(g.Files), humanize.IBytes(uint64(g.Size)), wasted)
		for _, f := range g.Files {
			marker := " "
			if f.IsOriginal {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s\n", marker, f.Path)
		}
	}
	printFooter(w, result, opts)
}

// WriteJSON emits the full result for pipelines.
func WriteJSON(w io.Writer, result types.DuplicateResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printFooter(w io.Writer, result types.DuplicateResult, opts PrintOptions) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Groups: %d  Duplicate files: %d  Wasted: %s\n",
		result.TotalGroups, result.TotalFiles, humanize.IBytes(uint64(result.WastedSpace)))
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d", opts.FilesScanned)
		if opts.FilesSkipped > 0 {
			fmt.Fprintf(w, " (skipped: %d)", opts.FilesSkipped)
		}
		fmt.Fprintln(w)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func limitGroups(groups []types.DuplicateGroup, max int) []types.DuplicateGroup {
	if max > 0 && len(groups) > max {
		return groups[:max]
	}
	return groups
}

func originalPath(g types.DuplicateGroup) string {
	for _, f := range g.Files {
		if f.IsOriginal {
			return f.Path
		}
	}
	if len(g.Files) > 0 {
		return g.Files[0].Path
	}
	return ""
}

// pathBudget leaves room for the fixed columns within the terminal width.
func pathBudget() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0 // not a tty: don't truncate
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 40 {
		return 0
	}
	return width - 40
}

func truncatePath(p string, budget int) string {
	if budget <= 0 || len(p) <= budget {
		return p
	}
	if budget <= 1 {
		return "…"
	}
	return "…" + p[len(p)-budget+1:]
}
