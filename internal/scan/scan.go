// internal/scan/scan.go
// Package scan walks run directories and resolves every configuration directory it finds.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/imagedata"
	"github.com/mwiater/yolometrics/internal/logging"
	"github.com/mwiater/yolometrics/internal/resolve"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Options tunes a Scanner.
type Options struct {
	// Workers bounds how many configuration directories of one run resolve concurrently.
	// Values below 1 mean sequential.
	Workers int
	// ProbeDimensions decodes image headers to record pixel sizes.
	ProbeDimensions bool
}

// Run is one directory holding configuration directories.
type Run struct {
	Name    string
	Path    string
	Configs []*resolve.Record
}

// Scanner discovers runs and resolves their configurations on a filesystem.
type Scanner struct {
	fs       afero.Fs
	table    *aliases.Table
	resolver *resolve.Resolver
	workers  int
}

// New returns a scanner over fs.
func New(fs afero.Fs, table *aliases.Table, opts Options) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	loader := imagedata.NewLoader(fs, opts.ProbeDimensions)
	return &Scanner{
		fs:       fs,
		table:    table,
		resolver: resolve.NewResolver(table, loader.Load),
		workers:  workers,
	}
}

// ScanConfig lists one configuration directory and resolves it.
func (s *Scanner) ScanConfig(path string) (*resolve.Record, error) {
	infos, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("unable to list configuration directory %s: %w", path, err)
	}
	files := make([]resolve.File, 0, len(infos))
	for _, fi := range infos {
		fi = s.follow(path, fi)
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, resolve.File{Name: fi.Name(), Path: filepath.Join(path, fi.Name())})
	}
	rec := s.resolver.Resolve(filepath.Base(path), path, resolve.NewLookup(files))
	logging.Debugf("resolved %s: %d keys", path, len(rec.Keys()))
	return rec, nil
}

// ConfigDirs returns the configuration directories directly inside dir, sorted
// case-insensitively by name.
func (s *Scanner) ConfigDirs(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fi := range infos {
		fi = s.follow(dir, fi)
		if fi.IsDir() && s.table.IsConfigDir(fi.Name()) {
			names = append(names, fi.Name())
		}
	}
	sortFold(names)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// IsRun reports whether dir directly contains at least one configuration directory. A directory
// that cannot be listed is not a run.
func (s *Scanner) IsRun(dir string) bool {
	dirs, err := s.ConfigDirs(dir)
	return err == nil && len(dirs) > 0
}

// ScanRun resolves every configuration directory of a run. Records come back in sorted directory
// order no matter how many workers ran. A configuration directory that cannot be listed is logged
// and left out; only cancellation aborts the run.
func (s *Scanner) ScanRun(ctx context.Context, dir string) ([]*resolve.Record, error) {
	paths, err := s.ConfigDirs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list run directory %s: %w", dir, err)
	}
	slots := make([]*resolve.Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := s.ScanConfig(p)
			if err != nil {
				logging.LogScanEvent("warn", p, "", "unlistable", err)
				return nil
			}
			slots[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*resolve.Record, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Discover finds the runs under root: root itself when it holds configuration directories, and
// each immediate child directory that does. Runs without configurations are dropped and the rest
// are sorted case-insensitively by name. Only a root that cannot be read and cancellation are
// errors; unlistable runs and configurations are logged and skipped.
func (s *Scanner) Discover(ctx context.Context, root string) ([]Run, error) {
	root = filepath.Clean(root)
	rootInfo, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("unable to read root directory %s: %w", root, err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	children, err := afero.ReadDir(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("unable to list root directory %s: %w", root, err)
	}

	type candidate struct {
		name string
		path string
		info os.FileInfo
	}
	var candidates []candidate
	if s.IsRun(root) {
		candidates = append(candidates, candidate{name: runName(root), path: root, info: rootInfo})
	}
	for _, fi := range children {
		fi = s.follow(root, fi)
		if !fi.IsDir() {
			continue
		}
		p := filepath.Join(root, fi.Name())
		if s.IsRun(p) {
			candidates = append(candidates, candidate{name: fi.Name(), path: p, info: fi})
		}
	}

	var runs []Run
	seenPaths := make(map[string]bool)
	var seenInfos []os.FileInfo
	for _, c := range candidates {
		if seenPaths[c.path] || containsSameFile(seenInfos, c.info) {
			continue
		}
		seenPaths[c.path] = true
		seenInfos = append(seenInfos, c.info)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		configs, err := s.ScanRun(ctx, c.path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.LogScanEvent("warn", c.path, "", "unlistable", err)
			continue
		}
		if len(configs) == 0 {
			continue
		}
		logging.Debugf("run %s: %d configurations", c.path, len(configs))
		runs = append(runs, Run{Name: c.name, Path: c.path, Configs: configs})
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return strings.ToLower(runs[i].Name) < strings.ToLower(runs[j].Name)
	})
	return runs, nil
}

// follow replaces a symlink's info with its target's, so linked directories and files count.
func (s *Scanner) follow(dir string, fi os.FileInfo) os.FileInfo {
	if fi.Mode()&os.ModeSymlink == 0 {
		return fi
	}
	target, err := s.fs.Stat(filepath.Join(dir, fi.Name()))
	if err != nil {
		return fi
	}
	return namedInfo{FileInfo: target, name: fi.Name()}
}

// namedInfo keeps the link name while reporting the target's mode.
type namedInfo struct {
	os.FileInfo
	name string
}

func (n namedInfo) Name() string { return n.name }

func containsSameFile(infos []os.FileInfo, fi os.FileInfo) bool {
	if n, ok := fi.(namedInfo); ok {
		fi = n.FileInfo
	}
	for _, seen := range infos {
		if n, ok := seen.(namedInfo); ok {
			seen = n.FileInfo
		}
		if os.SameFile(seen, fi) {
			return true
		}
	}
	return false
}

func runName(path string) string {
	base := filepath.Base(path)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return path
	}
	return base
}

func sortFold(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}
