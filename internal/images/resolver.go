// Package images downloads export-document image URLs to their
// deterministic local paths. Resolution is idempotent (existing files are
// kept) and a single unreachable URL never fails the run.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/atelier-guides/maquette/internal/export"
)

// DefaultConcurrency bounds parallel downloads.
const DefaultConcurrency = 4

// downloadAttempts is the per-URL retry budget.
const downloadAttempts = 3

// Config configures a Resolver.
type Config struct {
	// OutputDir is the export root; images land under
	// <OutputDir>/<local_path>/<local_filename>.
	OutputDir   string
	Concurrency int
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Report summarizes one resolution run.
type Report struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Resolver downloads the images of an export document.
type Resolver struct {
	outputDir   string
	concurrency int
	client      *http.Client
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		outputDir:   cfg.OutputDir,
		concurrency: cfg.Concurrency,
		client:      cfg.HTTPClient,
		logger:      cfg.Logger,
	}
}

type task struct {
	name string
	img  *export.Image
}

// Resolve downloads every image of the document and fills each entry's
// Local path. Entries that cannot be downloaded simply keep an empty Local.
func (r *Resolver) Resolve(ctx context.Context, doc *export.Document) Report {
	tasks := make(chan task)
	results := make(chan error)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- r.resolveOne(ctx, t)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(tasks)
		for _, page := range doc.Pages {
			for name, img := range page.Content.Images {
				if img == nil || img.URL == "" {
					continue
				}
				select {
				case tasks <- task{name: name, img: img}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var report Report
	for err := range results {
		switch {
		case err == nil:
			report.Downloaded++
		case err == errSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	r.logger.Info("images resolved",
		"downloaded", report.Downloaded, "skipped", report.Skipped, "failed", report.Failed)
	return report
}

var errSkipped = fmt.Errorf("already present")

// resolveOne downloads a single image to its deterministic path, skipping
// the download when the target file already exists.
func (r *Resolver) resolveOne(ctx context.Context, t task) error {
	target := filepath.Join(r.outputDir, filepath.FromSlash(t.img.LocalPath), t.img.LocalFilename)

	if _, err := os.Stat(target); err == nil {
		t.img.Local = target
		return errSkipped
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		r.logger.Warn("image target directory", "field", t.name, "err", err)
		return err
	}

	err := retry.Do(
		func() error { return r.download(ctx, t.img.URL, target) },
		retry.Context(ctx),
		retry.Attempts(downloadAttempts),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		r.logger.Warn("image download failed", "field", t.name, "url", t.img.URL, "err", err)
		return err
	}

	t.img.Local = target
	return nil
}

func (r *Resolver) download(ctx context.Context, url, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := target + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}
