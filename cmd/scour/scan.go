package scour

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/varalys/scour/internal/audit"
	"github.com/varalys/scour/internal/cache"
	"github.com/varalys/scour/internal/config"
	"github.com/varalys/scour/internal/dupes"
	"github.com/varalys/scour/internal/hash"
	"github.com/varalys/scour/internal/report"
	"github.com/varalys/scour/internal/scan"
	"github.com/varalys/scour/internal/tui"
	"github.com/varalys/scour/internal/types"
	"github.com/varalys/scour/internal/walker"
)

var (
	flagMinSize       int64
	flagMaxSize       int64
	flagIncludeHidden bool
	flagIncludeSystem bool
	flagExclude       string
	flagExcludeGlobs  string
	flagHashTimeout   time.Duration
	flagCached        bool
	flagTUI           bool
	flagMaxGroups     int
	flagSuggest       bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan for duplicate files",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().Int64Var(&flagMinSize, "min-size", 0, "ignore files smaller than this (bytes, 0 = config or 1)")
	cmd.Flags().Int64Var(&flagMaxSize, "max-size", 0, "ignore files larger than this (bytes, 0 = unbounded)")
	cmd.Flags().BoolVar(&flagIncludeHidden, "include-hidden", false, "include hidden files")
	cmd.Flags().BoolVar(&flagIncludeSystem, "include-system", false, "include system files (Windows attribute)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated path prefixes to exclude")
	cmd.Flags().StringVar(&flagExcludeGlobs, "exclude-globs", "", "comma-separated glob patterns to exclude")
	cmd.Flags().DurationVar(&flagHashTimeout, "hash-timeout", 0, "time budget for hashing one large file (0 = default 30s)")
	cmd.Flags().BoolVar(&flagCached, "cached", false, "show the previous scan result without rescanning")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse results interactively")
	cmd.Flags().IntVar(&flagMaxGroups, "max-groups", 0, "limit the number of groups shown (0 = all)")
	cmd.Flags().BoolVar(&flagSuggest, "suggest", false, "print deletion suggestions per group")
}

func runScan(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for i, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("bad path %q: %w", r, err)
		}
		roots[i] = abs
	}

	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if cwd, err := os.Getwd(); err == nil {
		if c, err := config.LoadLocal(cwd); err == nil {
			lcfg = c
		}
	}

	opts := scanOptions(lcfg, gcfg)
	noColor := pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	every := progressInterval(lcfg, gcfg)

	if flagCached {
		last, err := cache.LoadResults()
		if err != nil {
			return fmt.Errorf("no cached result: %w", err)
		}
		return presentResult(last.Result, rescanFunc(last.Roots, opts, every), 0, noColor)
	}

	// .scourignore patterns in each root join the exclude globs.
	for _, root := range roots {
		if patterns, err := walker.LoadIgnorePatterns(root); err == nil {
			opts.ExcludeGlobs = append(opts.ExcludeGlobs, patterns...)
		}
	}

	timeout := flagHashTimeout
	if timeout == 0 {
		if s := pickString("", lcfg.HashTimeout, gcfg.HashTimeout); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				timeout = d
			}
		}
	}

	calc := hash.NewWithOptions(hash.Options{
		CacheDisabled: !opts.UseCache,
		CacheSize:     pickInt(0, lcfg.CacheSize, gcfg.CacheSize),
		Timeout:       timeout,
	})
	if opts.UseCache {
		if db, err := cache.Load(); err == nil {
			cache.Warm(db, calc)
		}
	}

	detector := dupes.New(opts, calc)

	// Ctrl-C cancels the scan cleanly; the run terminates with a
	// Cancelled status instead of being killed mid-write.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	started := time.Now()
	result, err := runDetection(detector, roots, progressSink(), sig, every)
	switch {
	case errors.Is(err, scan.ErrCancelled):
		logHistory(roots, nil, time.Since(started), "cancelled")
		fmt.Fprintln(os.Stderr, "scan cancelled")
		return nil
	case err != nil:
		logHistory(roots, nil, time.Since(started), "error")
		return err
	}

	if opts.UseCache {
		_ = cache.Save(cache.Collect(calc))
	}
	_ = cache.SaveResults(*result, roots)
	logHistory(roots, result, time.Since(started), "completed")

	return presentResult(*result, rescanFunc(roots, opts, every), time.Since(started), noColor)
}

const defaultProgressEvery = 32

// scanOptions resolves detector options with CLI > local > global precedence.
// An unset min-size falls back to 1 byte so empty files never group.
func scanOptions(lcfg, gcfg config.FileConfig) dupes.Options {
	opts := dupes.Options{
		MinSize:       pickInt64(flagMinSize, lcfg.MinSize, gcfg.MinSize),
		MaxSize:       pickInt64(flagMaxSize, lcfg.MaxSize, gcfg.MaxSize),
		IncludeHidden: pickBool(flagIncludeHidden, lcfg.IncludeHidden, gcfg.IncludeHidden),
		IncludeSystem: pickBool(flagIncludeSystem, lcfg.IncludeSystem, gcfg.IncludeSystem),
		ExcludePaths:  splitList(pickString(flagExclude, lcfg.Exclude, gcfg.Exclude)),
		ExcludeGlobs:  splitList(pickString(flagExcludeGlobs, lcfg.ExcludeGlobs, gcfg.ExcludeGlobs)),
		Threads:       pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
	}
	if opts.MinSize <= 0 {
		opts.MinSize = 1
	}
	// The cache defaults on; config may turn it off, --no-cache always wins.
	opts.UseCache = pickBoolDefault(true, lcfg.UseCache, gcfg.UseCache)
	if flagNoCache {
		opts.UseCache = false
	}
	return opts
}

// progressInterval resolves how many progress callbacks coalesce into one
// published snapshot.
func progressInterval(lcfg, gcfg config.FileConfig) uint64 {
	every := pickInt(0, lcfg.ProgressEvery, gcfg.ProgressEvery)
	if every <= 0 {
		every = defaultProgressEvery
	}
	return uint64(every)
}

// runDetection drives one detection run under a scan manager and blocks
// until it reaches a terminal state. A value on sig cancels the scan.
func runDetection(detector *dupes.Detector, roots []string, sink scan.Sink[*types.DuplicateProgress], sig <-chan os.Signal, every uint64) (*types.DuplicateResult, error) {
	mgr := scan.NewManager[*types.DuplicateProgress, *types.DuplicateResult](sink)

	id := uuid.NewString()
	initial := &types.DuplicateProgress{ScanID: id, Status: types.StatusIdle}
	mgr.StartScanWithID(id, initial, func(sctx *scan.Context[*types.DuplicateProgress]) (*types.DuplicateResult, error) {
		return detector.FindDuplicates(context.Background(), roots, dupes.Control{
			Checkpoint: sctx.Checkpoint,
			OnProgress: func(p dupes.Progress) {
				sctx.UpdateProgressEvery(every, func(dp *types.DuplicateProgress) {
					dp.Phase = string(p.Phase)
					dp.CurrentPath = p.CurrentPath
					dp.ProcessedFiles = p.ProcessedFiles
					dp.TotalFiles = p.TotalFiles
					dp.ScannedSize = p.ScannedSize
					dp.FoundGroups = p.FoundGroups
					dp.Percent = p.Percent
				})
			},
		})
	})

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			mgr.CancelScan(id)
		case <-ticker.C:
			p, ok := mgr.Progress(id)
			if !ok {
				return nil, fmt.Errorf("scan %s disappeared", id)
			}
			if !p.Status.Terminal() {
				continue
			}
			switch p.Status {
			case types.StatusCompleted:
				res, ok := mgr.Result(id)
				if !ok {
					return nil, fmt.Errorf("scan %s finished without a result", id)
				}
				return res, nil
			case types.StatusCancelled:
				return nil, scan.ErrCancelled
			default:
				msg, _ := mgr.Err(id)
				return nil, fmt.Errorf("scan failed: %s", msg)
			}
		}
	}
}

// progressSink returns a sink writing a one-line progress display to
// stderr, or nil when stderr is not a terminal or output is machine-read.
func progressSink() scan.Sink[*types.DuplicateProgress] {
	if flagJSON || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return scan.SinkFunc[*types.DuplicateProgress](func(_ string, p *types.DuplicateProgress) {
		if p.Status.Terminal() {
			fmt.Fprint(os.Stderr, "\r\x1b[K")
			return
		}
		fmt.Fprintf(os.Stderr, "\r\x1b[K%s %.0f%% (%d files)", p.Phase, p.Percent, p.ProcessedFiles)
	})
}

func presentResult(result types.DuplicateResult, rescan tui.RescanFunc, elapsed time.Duration, noColor bool) error {
	opts := report.PrintOptions{
		NoColor:      noColor,
		Duration:     elapsed,
		FilesScanned: result.FilesScanned,
		FilesSkipped: result.FilesSkipped,
		MaxGroups:    flagMaxGroups,
	}

	switch {
	case flagJSON:
		return report.WriteJSON(os.Stdout, result)
	case flagTUI:
		return tui.Run(result, rescan)
	case flagText:
		report.PrintText(os.Stdout, result, opts)
	default:
		report.PrintTable(os.Stdout, result, opts)
	}

	if flagSuggest {
		for i, g := range result.Groups {
			suggested := dupes.SuggestDeletions(g)
			if len(suggested) == 0 {
				continue
			}
			fmt.Printf("group %d suggested deletions:\n", i+1)
			for _, p := range suggested {
				fmt.Printf("  %s\n", p)
			}
		}
	}
	return nil
}

// rescanFunc gives the TUI a way to re-run the same scan, forwarding live
// progress into its event loop.
func rescanFunc(roots []string, opts dupes.Options, every uint64) tui.RescanFunc {
	return func(onProgress func(*types.DuplicateProgress)) (types.DuplicateResult, error) {
		calc := hash.NewWithOptions(hash.Options{CacheDisabled: !opts.UseCache})
		if opts.UseCache {
			if db, err := cache.Load(); err == nil {
				cache.Warm(db, calc)
			}
		}
		detector := dupes.New(opts, calc)

		sink := scan.SinkFunc[*types.DuplicateProgress](func(_ string, p *types.DuplicateProgress) {
			onProgress(p)
		})
		res, err := runDetection(detector, roots, sink, nil, every)
		if err != nil {
			return types.DuplicateResult{}, err
		}
		if opts.UseCache {
			_ = cache.Save(cache.Collect(calc))
		}
		_ = cache.SaveResults(*res, roots)
		return *res, nil
	}
}

func logHistory(roots []string, result *types.DuplicateResult, elapsed time.Duration, status string) {
	record := audit.ScanRecord{
		ScanID:   uuid.NewString(),
		Roots:    roots,
		Duration: elapsed.Round(time.Millisecond).String(),
		Status:   status,
	}
	if result != nil {
		record.TotalGroups = result.TotalGroups
		record.TotalFiles = result.TotalFiles
		record.WastedBytes = result.WastedSpace
		record.FilesScanned = result.FilesScanned
		record.FilesSkipped = result.FilesSkipped
	}
	_ = audit.NewLog().LogScan(record)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
