// Package builder runs the full repository assembly pipeline: resolve
// each configured GitHub release, download the matching .deb assets
// into the pool, extract their control stanzas, and write the APT
// index tree.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mietzen/debrepo/pkg/config"
	"github.com/mietzen/debrepo/pkg/deb"
	"github.com/mietzen/debrepo/pkg/githubapi"
	"github.com/mietzen/debrepo/pkg/repo"
)

// DefaultConcurrency bounds parallel asset downloads.
const DefaultConcurrency = 4

// Options configures a Builder.
type Options struct {
	OutputDir   string
	Token       string
	Concurrency int
	BaseURL     string         // override the GitHub API endpoint, used in tests
	Logger      *logrus.Logger // defaults to logrus.StandardLogger()
}

// Result summarizes one pipeline run.
type Result struct {
	Indexed       int      // entries written to the indices
	Duplicates    int      // assets skipped as duplicate package/version/arch
	Reused        int      // pool files reused without re-downloading
	Architectures []string // emitted bucket names
	Warnings      []string // per-package problems that did not abort the run
}

// Builder assembles the repository.
type Builder struct {
	cfg         *config.Config
	client      *githubapi.Client
	downloader  *githubapi.Downloader
	writer      *repo.Writer
	log         *logrus.Entry
	concurrency int
}

// New creates a Builder for the given configuration.
func New(cfg *config.Config, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	clientOpts := []githubapi.Option{}
	if opts.Token != "" {
		clientOpts = append(clientOpts, githubapi.WithToken(opts.Token))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, githubapi.WithBaseURL(opts.BaseURL))
	}

	return &Builder{
		cfg:         cfg,
		client:      githubapi.NewClient(clientOpts...),
		downloader:  githubapi.NewDownloader(opts.Token),
		writer:      repo.NewWriter(opts.OutputDir, cfg.Suite, cfg.Component),
		log:         logger.WithField("run", uuid.New().String()[:8]),
		concurrency: concurrency,
	}
}

// job is one asset to fetch and index. Jobs keep their position so the
// index is filled in config order regardless of download completion
// order.
type job struct {
	pkg   *config.Package
	tag   string
	asset githubapi.Asset
}

// Run executes the pipeline. Per-package resolution problems become
// warnings in the Result; download or extraction failures abort.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	jobs, err := b.resolve(ctx, result)
	if err != nil {
		return nil, err
	}

	entries, reused, err := b.fetchAll(ctx, jobs)
	if err != nil {
		return nil, err
	}
	result.Reused = reused

	ix := repo.NewIndex()
	for i, e := range entries {
		if !ix.Add(e) {
			b.log.WithFields(logrus.Fields{
				"package": e.Control.Package(),
				"version": e.Control.Version(),
				"arch":    e.Control.Architecture(),
				"asset":   jobs[i].asset.Name,
			}).Warn("duplicate package/version/architecture, keeping first")
			result.Duplicates++
		}
	}
	result.Indexed = ix.Len()
	result.Architectures = ix.Architectures()

	files, err := b.writer.WriteIndexes(ix)
	if err != nil {
		return nil, err
	}

	err = b.writer.WriteRelease(&repo.ReleaseData{
		Origin:        b.cfg.Origin,
		Label:         b.cfg.Label,
		Suite:         b.cfg.Suite,
		Codename:      b.cfg.Codename,
		Description:   b.cfg.Description,
		Architectures: ix.Architectures(),
		Components:    []string{b.cfg.Component},
		Files:         files,
	})
	if err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"indexed":  result.Indexed,
		"archs":    result.Architectures,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("repository written")

	return result, nil
}

// resolve fetches each configured release and expands it into download
// jobs for the assets passing the package's filter.
func (b *Builder) resolve(ctx context.Context, result *Result) ([]job, error) {
	var jobs []job

	for i := range b.cfg.Packages {
		pkg := &b.cfg.Packages[i]
		log := b.log.WithFields(logrus.Fields{"repo": pkg.Repo, "version": pkg.Version})

		release, err := b.client.Release(ctx, pkg.Owner(), pkg.Name(), pkg.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s@%s: %w", pkg.Repo, pkg.Version, err)
		}

		// A repository's latest release does not always carry .deb
		// assets (some projects alternate packaged and source-only
		// releases). Walk the release list for the newest one that
		// does before giving up.
		if matchingAssets(release, pkg) == 0 && (pkg.Version == "" || pkg.Version == "latest") {
			fallback, err := b.latestWithAssets(ctx, pkg)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s@%s: %w", pkg.Repo, pkg.Version, err)
			}
			if fallback != nil {
				log.WithField("tag", fallback.TagName).Debug("latest release has no matching assets, using older release")
				release = fallback
			}
		}
		log = log.WithField("tag", release.TagName)

		matched := 0
		for _, asset := range release.Assets {
			if !pkg.MatchAsset(asset.Name) {
				continue
			}
			jobs = append(jobs, job{pkg: pkg, tag: release.TagName, asset: asset})
			matched++
		}

		if matched == 0 {
			warning := fmt.Sprintf("%s@%s: no assets match", pkg.Repo, release.TagName)
			log.Warn("no matching .deb assets in release")
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		log.WithField("assets", matched).Debug("release resolved")
	}

	return jobs, nil
}

// latestWithAssets scans the repository's release list, newest first,
// for a stable release carrying at least one asset that passes the
// package's filter. It returns nil when no release qualifies.
func (b *Builder) latestWithAssets(ctx context.Context, pkg *config.Package) (*githubapi.Release, error) {
	releases, err := b.client.Releases(ctx, pkg.Owner(), pkg.Name())
	if err != nil {
		return nil, err
	}

	for i := range releases {
		r := &releases[i]
		if r.Draft || r.Prerelease {
			continue
		}
		if matchingAssets(r, pkg) > 0 {
			return r, nil
		}
	}
	return nil, nil
}

func matchingAssets(r *githubapi.Release, pkg *config.Package) int {
	n := 0
	for _, asset := range r.Assets {
		if pkg.MatchAsset(asset.Name) {
			n++
		}
	}
	return n
}

// fetchAll downloads every job's asset into the pool and extracts its
// control stanza. Assets land in a staging directory first because the
// pool location depends on the Package control field, which is only
// known after extraction.
func (b *Builder) fetchAll(ctx context.Context, jobs []job) ([]*repo.Entry, int, error) {
	if len(jobs) == 0 {
		return nil, 0, nil
	}

	stagingDir := filepath.Join(b.writer.OutputDir, ".staging-"+uuid.New().String())
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	entries := make([]*repo.Entry, len(jobs))
	reused := make([]bool, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			// Separate staging subdirectories: two releases may ship
			// assets with the same file name, and concurrent downloads
			// into one shared path would clobber each other.
			entry, fromPool, err := b.fetchOne(ctx, j, filepath.Join(stagingDir, strconv.Itoa(i)))
			if err != nil {
				return err
			}
			entries[i] = entry
			reused[i] = fromPool
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	reusedCount := 0
	for _, r := range reused {
		if r {
			reusedCount++
		}
	}
	return entries, reusedCount, nil
}

// fetchOne produces the index entry for a single asset. It reports
// whether an existing pool file was reused instead of downloaded.
func (b *Builder) fetchOne(ctx context.Context, j job, stagingDir string) (*repo.Entry, bool, error) {
	log := b.log.WithFields(logrus.Fields{"repo": j.pkg.Repo, "tag": j.tag, "asset": j.asset.Name})

	if existing := b.findPoolFile(j.asset.Name, j.asset.Size); existing != "" {
		log.Debug("pool file up to date, skipping download")
		entry, err := b.entryFromPoolFile(existing)
		if err != nil {
			return nil, false, err
		}
		return entry, true, nil
	}

	stagingPath := filepath.Join(stagingDir, j.asset.Name)
	log.Info("downloading asset")
	sums := repo.NewChecksumWriter()
	err := b.downloader.Download(ctx, githubapi.DownloadOptions{
		URL:          j.asset.DownloadURL,
		DestPath:     stagingPath,
		ExpectedSize: j.asset.Size,
		Tee:          sums,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to download %s from %s@%s: %w", j.asset.Name, j.pkg.Repo, j.tag, err)
	}

	ctrl, err := deb.ReadControlFile(stagingPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to extract control data from %s: %w", j.asset.Name, err)
	}
	log.WithFields(logrus.Fields{
		"package": ctrl.Package(),
		"arch":    ctrl.Architecture(),
	}).Debug("control stanza extracted")

	poolRel := repo.PoolPath(b.cfg.Component, ctrl.Package(), j.asset.Name)
	poolAbs := b.writer.PoolFilePath(poolRel)
	if err := os.MkdirAll(filepath.Dir(poolAbs), 0755); err != nil {
		return nil, false, fmt.Errorf("failed to create pool directory: %w", err)
	}
	if err := os.Rename(stagingPath, poolAbs); err != nil {
		return nil, false, fmt.Errorf("failed to move %s into pool: %w", j.asset.Name, err)
	}

	cs := sums.Sums()
	return &repo.Entry{
		Control:  ctrl,
		Filename: poolRel,
		Size:     cs.Size,
		MD5:      cs.MD5,
		SHA1:     cs.SHA1,
		SHA256:   cs.SHA256,
	}, false, nil
}

// findPoolFile looks for an already-downloaded asset anywhere in the
// component's pool with the expected size. Release assets are
// immutable for a given tag, so a size match is sufficient to reuse.
func (b *Builder) findPoolFile(assetName string, size int64) string {
	pattern := filepath.Join(b.writer.OutputDir, "pool", b.cfg.Component, "*", "*", assetName)
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err == nil && info.Size() == size {
			return m
		}
	}
	return ""
}

// entryFromPoolFile rebuilds an index entry from a pool file that was
// kept from an earlier run.
func (b *Builder) entryFromPoolFile(poolAbs string) (*repo.Entry, error) {
	ctrl, err := deb.ReadControlFile(poolAbs)
	if err != nil {
		return nil, err
	}

	sums, err := repo.ChecksumFile(poolAbs)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(b.writer.OutputDir, poolAbs)
	if err != nil {
		return nil, fmt.Errorf("pool file outside output directory: %w", err)
	}

	return &repo.Entry{
		Control:  ctrl,
		Filename: filepath.ToSlash(rel),
		Size:     sums.Size,
		MD5:      sums.MD5,
		SHA1:     sums.SHA1,
		SHA256:   sums.SHA256,
	}, nil
}
