package crawler

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"doclink/internal/doclet"
	"doclink/internal/extractor"
	"doclink/internal/graph"
	"doclink/internal/logfields"
	"doclink/internal/pkgdoc"
)

// Crawler scans directories for source files and collects their doclets.
type Crawler struct {
	fs        afero.Fs
	extractor *extractor.Extractor
	ignored   []string
	jobs      int
	logger    *slog.Logger
}

type Option func(*Crawler)

// WithJobs bounds how many files are parsed at once.
func WithJobs(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.jobs = n
		}
	}
}

// WithIgnored replaces the directory names that are never entered.
func WithIgnored(names ...string) Option {
	return func(c *Crawler) { c.ignored = names }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// NewCrawler creates a new crawler instance.
func NewCrawler(fs afero.Fs, ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		fs:        fs,
		extractor: ext,
		ignored:   []string{".git", "vendor", "node_modules", "testdata"},
		jobs:      4,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inputs is what discovery found, each list sorted by path.
type Inputs struct {
	Sources []string
	// Dumps are JSON doclet arrays named directly as roots.
	Dumps   []string
	Package pkgdoc.Source
}

// FileError records a file that could not be read or parsed. It does not
// stop the crawl.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Result holds the raw doclets of a crawl in a stable order: dumps, then
// sources by path, then the package doclet.
type Result struct {
	Doclets []*doclet.Doclet
	Inputs  Inputs
	Failed  []FileError
}

// Discover walks roots. A root that is a file is taken as given; directories
// contribute source files, and the first package.json and README found
// (shallowest path first) describe the package.
func (c *Crawler) Discover(roots ...string) (Inputs, error) {
	var in Inputs
	var manifests, readmes []string

	for _, root := range roots {
		info, err := c.fs.Stat(root)
		if err != nil {
			return Inputs{}, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			switch {
			case filepath.Base(root) == "package.json":
				manifests = append(manifests, root)
			case isReadme(root):
				readmes = append(readmes, root)
			case strings.EqualFold(filepath.Ext(root), ".json"):
				in.Dumps = append(in.Dumps, root)
			default:
				in.Sources = append(in.Sources, root)
			}
			continue
		}

		err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			// Skip ignored directories
			if info.IsDir() {
				if path != root && c.isIgnored(info.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			switch name := info.Name(); {
			case name == "package.json":
				manifests = append(manifests, path)
			case isReadme(name):
				readmes = append(readmes, path)
			case c.extractor.Handles(name) && !isTestFile(name):
				in.Sources = append(in.Sources, path)
			}
			return nil
		})
		if err != nil {
			return Inputs{}, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(in.Sources)
	sort.Strings(in.Dumps)
	in.Package.PackageJSON = shallowest(manifests)
	in.Package.Readme = shallowest(readmes)
	in.Package.Files = in.Sources
	return in, nil
}

// Collect discovers inputs under roots and extracts their doclets in
// parallel. The order of the result does not depend on scheduling.
func (c *Crawler) Collect(ctx context.Context, roots ...string) (*Result, error) {
	in, err := c.Discover(roots...)
	if err != nil {
		return nil, err
	}
	res := &Result{Inputs: in}

	for _, path := range in.Dumps {
		col, err := graph.LoadFile(c.fs, path)
		if err != nil {
			c.fail(res, path, err)
			continue
		}
		res.Doclets = append(res.Doclets, col.Doclets()...)
	}

	perFile := make([][]*doclet.Doclet, len(in.Sources))
	errs := make([]error, len(in.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(c.jobs, len(in.Sources))))
	for i, path := range in.Sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := c.extractor.ExtractFromFile(gctx, c.fs, path)
			if err != nil {
				// Log and continue instead of failing the whole scan
				errs[i] = err
				return nil
			}
			perFile[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, path := range in.Sources {
		if errs[i] != nil {
			c.fail(res, path, errs[i])
			continue
		}
		res.Doclets = append(res.Doclets, perFile[i]...)
	}

	// There is always a package doclet, even when its files are unusable.
	pkg, err := pkgdoc.Load(c.fs, in.Package)
	if err != nil {
		path := in.Package.PackageJSON
		var perr *iofs.PathError
		if errors.As(err, &perr) {
			path = perr.Path
		}
		c.fail(res, path, err)
	}
	if pkg == nil {
		pkg = pkgdoc.Empty(in.Package.Files)
	}
	res.Doclets = append(res.Doclets, pkg)

	c.logger.Info("crawl complete",
		logfields.Count(len(res.Doclets)),
		slog.Int("files", len(in.Sources)+len(in.Dumps)),
		slog.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func (c *Crawler) fail(res *Result, path string, err error) {
	c.logger.Warn("skipping input", logfields.Path(path), logfields.Error(err))
	res.Failed = append(res.Failed, FileError{Path: path, Err: err})
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

func isReadme(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return name == "readme.md" || name == "readme.markdown" || name == "readme"
}

func isTestFile(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec")
}

// shallowest picks the path with the fewest separators, then the
// lexically first.
func shallowest(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], string(filepath.Separator)), strings.Count(paths[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
	return paths[0]
}
