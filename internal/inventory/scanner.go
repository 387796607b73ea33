// Package inventory discovers the files living on each source volume,
// producing the FileRecords a WorldView is built from. It is
// deliberately thin: no content hashing, no metadata extraction, no
// duplicate detection — the consolidation planner only cares about a
// file's path and size.
package inventory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/report"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/schollz/progressbar/v3"
)

// Scanner walks one or more volume roots and persists the FileRecords
// it discovers.
type Scanner struct {
	store       *store.Store
	concurrency int
	logger      *report.EventLogger
}

// Config holds scanner configuration.
type Config struct {
	Store       *store.Store
	Concurrency int
	Logger      *report.EventLogger
}

// New creates a new Scanner.
func New(cfg *Config) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Scanner{
		store:       cfg.Store,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
}

// Result summarizes one volume's scan.
type Result struct {
	VolumePath   string
	FilesFound   int
	BytesFound   int64
	Errors       []error
}

// Scan walks volumePath and records every regular file found beneath
// it, keyed by its path relative to volumePath.
func (s *Scanner) Scan(ctx context.Context, volumePath string) (*Result, error) {
	util.InfoLog("Starting scan of: %s", volumePath)

	result := &Result{VolumePath: volumePath, Errors: make([]error, 0)}

	filePaths := make(chan string, 100)
	newFiles := make(chan model.FileRecord, 1000)

	var filesFound atomic.Int64
	var bytesFound atomic.Int64
	var filesProcessed atomic.Int64

	var wg sync.WaitGroup

	progressCtx, cancelProgress := context.WithCancel(ctx)
	defer cancelProgress()

	isTTY := util.IsTerminal(os.Stdout.Fd())
	var bar *progressbar.ProgressBar
	if isTTY {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning "+volumePath),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-progressCtx.Done():
				return
			case <-ticker.C:
				found := filesFound.Load()
				processed := filesProcessed.Load()
				if bar != nil && found > 0 {
					bar.Describe(fmt.Sprintf("Scanning %s | %d found | %s",
						volumePath, found, size.FormatBytes(bytesFound.Load())))
					bar.Set64(processed)
				} else if found > 0 {
					util.InfoLog("Progress: found %d files, processed %d", found, processed)
				}
			}
		}
	}()

	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		batch := make([]model.FileRecord, 0, 1000)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		flush := func() {
			if len(batch) == 0 {
				return
			}
			if err := s.store.UpsertFileBatch(batch); err != nil {
				util.ErrorLog("Failed to batch upsert files: %v", err)
				result.Errors = append(result.Errors, err)
			}
			batch = batch[:0]
		}

		for {
			select {
			case f, ok := <-newFiles:
				if !ok {
					flush()
					return
				}
				batch = append(batch, f)
				if len(batch) >= 1000 {
					flush()
				}
			case <-ticker.C:
				flush()
			case <-ctx.Done():
				flush()
				return
			}
		}
	}()

	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range filePaths {
				select {
				case <-ctx.Done():
					return
				default:
				}

				rec, err := s.recordFor(volumePath, path)
				filesProcessed.Add(1)
				if err != nil {
					util.ErrorLog("Failed to stat %s: %v", path, err)
					result.Errors = append(result.Errors, err)
					if s.logger != nil {
						s.logger.LogError(report.EventError, path, err)
					}
					continue
				}

				bytesFound.Add(rec.SizeBytes)
				newFiles <- rec
				if s.logger != nil {
					s.logger.LogScan(rec.AbsolutePath, volumePath, rec.SizeBytes)
				}
			}
		}()
	}

	walkErr := filepath.WalkDir(volumePath, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Errorf("access error: %s: %w", path, err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		filesFound.Add(1)
		select {
		case filePaths <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	close(filePaths)
	wg.Wait()
	close(newFiles)
	writerWg.Wait()
	cancelProgress()

	if bar != nil {
		bar.Finish()
	}

	result.FilesFound = int(filesFound.Load())
	result.BytesFound = bytesFound.Load()

	if walkErr != nil && walkErr != context.Canceled {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	util.SuccessLog("Scan complete for %s: %d files, %d errors", volumePath, result.FilesFound, len(result.Errors))
	return result, nil
}

// ScanAll scans every volume root in turn, returning one Result per
// volume in input order.
func (s *Scanner) ScanAll(ctx context.Context, volumePaths []string) ([]*Result, error) {
	results := make([]*Result, 0, len(volumePaths))
	for _, v := range volumePaths {
		res, err := s.Scan(ctx, v)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Scanner) recordFor(volumePath, path string) (model.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("failed to stat file: %w", err)
	}

	rel, err := filepath.Rel(volumePath, path)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("failed to compute relative path: %w", err)
	}

	return model.FileRecord{
		AbsolutePath: path,
		RelativePath: rel,
		SizeBytes:    info.Size(),
		SourceVolume: volumePath,
	}, nil
}
