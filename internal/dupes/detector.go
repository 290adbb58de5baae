package dupes

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/varalys/scour/internal/hash"
	"github.com/varalys/scour/internal/types"
	"github.com/varalys/scour/internal/walker"
)

// Phase identifies a stage of the detection pipeline. Phases are strictly
// ordered: each consumes the full output of the previous one.
type Phase string

const (
	PhaseScanning     Phase = "scanning"
	PhaseSizeGrouping Phase = "size_grouping"
	PhaseHashing      Phase = "hashing"
	PhaseFinalizing   Phase = "finalizing"
)

// Progress is one progress report from a running detection.
type Progress struct {
	Phase          Phase
	CurrentPath    string
	ProcessedFiles uint64
	TotalFiles     uint64
	ScannedSize    int64
	FoundGroups    uint64
	Percent        float64
}

// Control injects cooperation points into the pipeline. Checkpoint is
// consulted at traversal checkpoints and may block (pause) or return an
// error (cancel); OnProgress receives phase updates. Both are optional.
type Control struct {
	Checkpoint func() error
	OnProgress func(Progress)
}

func (c Control) checkpoint() error {
	if c.Checkpoint == nil {
		return nil
	}
	return c.Checkpoint()
}

func (c Control) report(p Progress) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}

// Options configures a detection run.
type Options struct {
	MinSize       int64
	MaxSize       int64 // 0 means unbounded
	IncludeHidden bool
	IncludeSystem bool
	UseCache      bool
	ExcludePaths  []string
	ExcludeGlobs  []string
	Threads       int // 0 means GOMAXPROCS
}

// Detector finds groups of byte-identical files under a set of roots.
type Detector struct {
	opts   Options
	calc   *hash.Calculator
	filter walker.FileFilter
}

// New builds a Detector. A nil calculator gets a default one honoring
// opts.UseCache.
func New(opts Options, calc *hash.Calculator) *Detector {
	if calc == nil {
		calc = hash.NewWithOptions(hash.Options{CacheDisabled: !opts.UseCache})
	}
	return &Detector{
		opts: opts,
		calc: calc,
		filter: walker.NewStandardFilter(walker.FilterOptions{
			IncludeHidden: opts.IncludeHidden,
			IncludeSystem: opts.IncludeSystem,
			ExcludePaths:  opts.ExcludePaths,
			ExcludeGlobs:  opts.ExcludeGlobs,
		}),
	}
}

// Calculator exposes the underlying hash calculator, so callers can warm or
// persist its cache across runs.
func (d *Detector) Calculator() *hash.Calculator { return d.calc }

// candidate is one file surviving the scan phase. order preserves traversal
// order for original tie-breaking.
type candidate struct {
	path    string
	size    int64
	modTime time.Time
	order   int
}

// FindDuplicates runs the five-phase pipeline over roots. Per-file I/O
// errors are counted and skipped; only cancellation or a failure that stops
// the whole run aborts it.
func (d *Detector) FindDuplicates(ctx context.Context, roots []string, ctl Control) (*types.DuplicateResult, error) {
	started := time.Now()
	var skipped uint64

	ctl.report(Progress{Phase: PhaseScanning})

	candidates, scanSkipped, err := d.scanFiles(ctx, roots, ctl)
	if err != nil {
		return nil, err
	}
	skipped += scanSkipped
	total := uint64(len(candidates))

	ctl.report(Progress{Phase: PhaseSizeGrouping, TotalFiles: total, Percent: 10})

	buckets := sizeBuckets(candidates)

	ctl.report(Progress{Phase: PhaseHashing, TotalFiles: total, Percent: 20})

	hashGroups, hashSkipped, err := d.hashAndGroup(ctx, buckets, total, ctl)
	if err != nil {
		return nil, err
	}
	skipped += hashSkipped

	ctl.report(Progress{
		Phase:          PhaseFinalizing,
		ProcessedFiles: total,
		TotalFiles:     total,
		FoundGroups:    uint64(len(hashGroups)),
		Percent:        90,
	})

	groups := buildGroups(hashGroups)

	result := &types.DuplicateResult{
		Groups:       groups,
		TotalGroups:  len(groups),
		FilesScanned: total,
		FilesSkipped: skipped,
		DurationMS:   time.Since(started).Milliseconds(),
	}
	for _, g := range groups {
		result.TotalFiles += len(g.Files)
		result.TotalSize += g.Size * int64(len(g.Files))
		result.WastedSpace += g.WastedSpace
	}

	ctl.report(Progress{
		Phase:          PhaseFinalizing,
		ProcessedFiles: total,
		TotalFiles:     total,
		FoundGroups:    uint64(len(groups)),
		Percent:        100,
	})
	return result, nil
}

// scanFiles enumerates candidate files under roots, applying the filter and
// the configured size range. Phase band 0-10%.
func (d *Detector) scanFiles(ctx context.Context, roots []string, ctl Control) ([]candidate, uint64, error) {
	w := walker.New(d.filter)
	var out []candidate
	var skipped uint64
	order := 0

	for _, root := range roots {
		err := w.Files(root, func(p string, de fs.DirEntry) error {
			if err := ctl.checkpoint(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := de.Info()
			if err != nil {
				skipped++
				return nil
			}
			size := info.Size()
			if size < d.opts.MinSize {
				return nil
			}
			if d.opts.MaxSize > 0 && size > d.opts.MaxSize {
				return nil
			}
			out = append(out, candidate{
				path:    p,
				size:    size,
				modTime: info.ModTime(),
				order:   order,
			})
			order++
			if len(out)%64 == 0 {
				ctl.report(Progress{
					Phase:          PhaseScanning,
					CurrentPath:    p,
					ProcessedFiles: uint64(len(out)),
					ScannedSize:    size,
					Percent:        5,
				})
			}
			return nil
		})
		if err != nil {
			return nil, skipped, err
		}
	}
	return out, skipped, nil
}

// sizeBuckets groups candidates by exact byte size and drops singleton
// buckets, which cannot contain a duplicate. Phase band 10-20%.
func sizeBuckets(candidates []candidate) map[int64][]candidate {
	buckets := make(map[int64][]candidate)
	for _, c := range candidates {
		buckets[c.size] = append(buckets[c.size], c)
	}
	for size, files := range buckets {
		if len(files) < 2 {
			delete(buckets, size)
		}
	}
	return buckets
}

// hashAndGroup runs the partial-hash pre-filter and full-hash grouping over
// each size bucket. Partial hashing is embarrassingly parallel: workers
// share only the read-only filter and the locked hash cache. Band 20-90%.
func (d *Detector) hashAndGroup(ctx context.Context, buckets map[int64][]candidate, total uint64, ctl Control) (map[string][]candidate, uint64, error) {
	threads := d.opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	hashGroups := make(map[string][]candidate)
	var skipped uint64
	var processed uint64

	// Deterministic bucket order keeps progress monotonic across runs.
	sizes := make([]int64, 0, len(buckets))
	for size := range buckets {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	for _, size := range sizes {
		files := buckets[size]

		partials, nSkipped, err := d.partialBuckets(ctx, files, threads, ctl)
		if err != nil {
			return nil, skipped, err
		}
		skipped += nSkipped

		for _, sub := range partials {
			if len(sub) < 2 {
				// Differs within the first 64 KiB: rejected without a
				// full read.
				processed += uint64(len(sub))
				continue
			}
			for _, c := range sub {
				if err := ctl.checkpoint(); err != nil {
					return nil, skipped, err
				}
				full, err := d.calc.FileHash(ctx, c.path)
				processed++
				if err != nil {
					if ctx.Err() != nil {
						return nil, skipped, ctx.Err()
					}
					skipped++
					continue
				}
				hashGroups[full.Hash] = append(hashGroups[full.Hash], c)

				percent := 20.0
				if total > 0 {
					percent += float64(processed) / float64(total) * 70.0
				}
				ctl.report(Progress{
					Phase:          PhaseHashing,
					CurrentPath:    c.path,
					ProcessedFiles: processed,
					TotalFiles:     total,
					FoundGroups:    uint64(len(hashGroups)),
					Percent:        percent,
				})
			}
		}
	}

	for h, files := range hashGroups {
		if len(files) < 2 {
			delete(hashGroups, h)
		}
	}
	return hashGroups, skipped, nil
}

// partialBuckets computes partial hashes for one size bucket in parallel and
// sub-buckets by them.
func (d *Detector) partialBuckets(ctx context.Context, files []candidate, threads int, ctl Control) (map[string][]candidate, uint64, error) {
	if err := ctl.checkpoint(); err != nil {
		return nil, 0, err
	}

	var mu sync.Mutex
	out := make(map[string][]candidate)
	var skipped uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for _, c := range files {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.calc.PartialHash(c.path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped++
				return nil
			}
			out[res.Hash] = append(out[res.Hash], c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, skipped, err
	}

	// Restore traversal order inside each sub-bucket; workers finish in
	// arbitrary order.
	for _, sub := range out {
		sort.Slice(sub, func(i, j int) bool { return sub[i].order < sub[j].order })
	}
	return out, skipped, nil
}

// buildGroups finalizes hash groups into the reported shape: the earliest
// modified member is the original (ties broken by traversal order), wasted
// space is size*(n-1), and groups are sorted by wasted space descending so
// the highest-value cleanup opportunities surface first. Band 90-100%.
func buildGroups(hashGroups map[string][]candidate) []types.DuplicateGroup {
	groups := make([]types.DuplicateGroup, 0, len(hashGroups))
	for h, files := range hashGroups {
		if len(files) < 2 {
			continue
		}

		sorted := make([]candidate, len(files))
		copy(sorted, files)
		sort.Slice(sorted, func(i, j int) bool {
			if !sorted[i].modTime.Equal(sorted[j].modTime) {
				return sorted[i].modTime.Before(sorted[j].modTime)
			}
			return sorted[i].order < sorted[j].order
		})

		size := sorted[0].size
		members := make([]types.DuplicateFile, len(sorted))
		for i, c := range sorted {
			members[i] = types.DuplicateFile{
				Path:         c.path,
				Name:         filepath.Base(c.path),
				Size:         c.size,
				ModifiedTime: c.modTime.Unix(),
				IsOriginal:   i == 0,
			}
		}

		groups = append(groups, types.DuplicateGroup{
			Hash:        h,
			Size:        size,
			Files:       members,
			WastedSpace: size * int64(len(members)-1),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedSpace != groups[j].WastedSpace {
			return groups[i].WastedSpace > groups[j].WastedSpace
		}
		return groups[i].Hash < groups[j].Hash
	})
	return groups
}
