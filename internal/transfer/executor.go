package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/report"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/util"
)

// VerifyMode controls the post-copy verification an apply run performs
// before removing a source file.
type VerifyMode string

const (
	VerifyNone VerifyMode = "none"
	VerifySize VerifyMode = "size"
	VerifyHash VerifyMode = "hash"
)

// Executor applies a materialized Plan's pending moves directly, in plan
// order and without grouping them by destination. Each move is a rename
// when that succeeds; otherwise the file is copied atomically via a .part
// temp file and the source is then removed.
type Executor struct {
	store       *store.Store
	concurrency int
	verifyMode  VerifyMode
	dryRun      bool
	bufferSize  int
	retryConfig *util.RetryConfig
	logger      *report.EventLogger
}

// Config holds executor configuration.
type Config struct {
	Store       *store.Store
	Concurrency int
	VerifyMode  VerifyMode
	DryRun      bool
	BufferSize  int
	RetryConfig *util.RetryConfig
	Logger      *report.EventLogger
}

// New creates a new Executor.
func New(cfg *Config) *Executor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.VerifyMode == "" {
		cfg.VerifyMode = VerifySize
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 128 * 1024
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = &util.RetryConfig{MaxAttempts: 1}
	}
	return &Executor{
		store:       cfg.Store,
		concurrency: cfg.Concurrency,
		verifyMode:  cfg.VerifyMode,
		dryRun:      cfg.DryRun,
		bufferSize:  cfg.BufferSize,
		retryConfig: cfg.RetryConfig,
		logger:      cfg.Logger,
	}
}

// Result summarizes an apply run.
type Result struct {
	Processed    int
	Succeeded    int
	Failed       int
	BytesWritten int64
	Errors       []error
}

// Apply executes every pending move in plan on a single pool of
// e.concurrency workers, fed in plan order; moves are not split into
// per-destination batches the way the generated script splits them.
func (e *Executor) Apply(ctx context.Context, plan model.Plan) (*Result, error) {
	util.InfoLog("Starting apply")

	pending := make([]model.FileMove, 0, len(plan.Moves))
	for _, m := range plan.Moves {
		if m.Status == model.StatusPending {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		util.InfoLog("No files to apply")
		return &Result{}, nil
	}

	if e.dryRun {
		util.InfoLog("DRY-RUN mode: no files will be moved")
	}

	result := &Result{Errors: make([]error, 0)}
	var processed, succeeded, failed atomic.Int64
	var bytesWritten atomic.Int64

	movesChan := make(chan model.FileMove, e.concurrency*2)
	doneChan := make(chan struct{})

	for i := 0; i < e.concurrency; i++ {
		go func() {
			defer func() { doneChan <- struct{}{} }()
			for m := range movesChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				processed.Add(1)
				n, err := e.applyMove(ctx, m)
				if err != nil {
					util.ErrorLog("Failed to apply move for %s: %v", m.File.AbsolutePath, err)
					result.Errors = append(result.Errors, err)
					failed.Add(1)
					if e.store != nil {
						_ = e.store.UpdateMoveStatus(m.File.AbsolutePath, model.StatusFailed, err.Error())
					}
					continue
				}
				succeeded.Add(1)
				bytesWritten.Add(n)
				if e.store != nil {
					_ = e.store.UpdateMoveStatus(m.File.AbsolutePath, model.StatusCompleted, "")
				}
			}
		}()
	}

	go func() {
		for _, m := range pending {
			select {
			case <-ctx.Done():
				close(movesChan)
				return
			case movesChan <- m:
			}
		}
		close(movesChan)
	}()

	for i := 0; i < e.concurrency; i++ {
		<-doneChan
	}

	result.Processed = int(processed.Load())
	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())
	result.BytesWritten = bytesWritten.Load()

	util.SuccessLog("Apply complete: %d processed, %d succeeded, %d failed",
		result.Processed, result.Succeeded, result.Failed)

	return result, nil
}

func (e *Executor) applyMove(ctx context.Context, m model.FileMove) (int64, error) {
	dest := m.DestinationPath()
	start := time.Now()

	if e.dryRun {
		util.DebugLog("DRY-RUN: would move %s -> %s", m.File.AbsolutePath, dest)
		return m.File.SizeBytes, nil
	}

	written, err := e.moveFile(ctx, m.File.AbsolutePath, dest)
	duration := time.Since(start)
	if e.logger != nil {
		e.logger.LogExecute(m.File.AbsolutePath, m.File.SourceVolume, m.TargetVolume, written, duration, err)
	}
	return written, err
}

// moveFile copies srcPath to destPath atomically via a .part temp file,
// verifies per e.verifyMode, then removes the source.
func (e *Executor) moveFile(ctx context.Context, srcPath, destPath string) (int64, error) {
	destDir := filepath.Dir(destPath)
	if err := util.RetryableMkdirAll(destDir, 0755, e.retryConfig); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := util.RetryableRename(srcPath, destPath, e.retryConfig); err == nil {
		stat, statErr := util.RetryableStat(destPath, e.retryConfig)
		if statErr == nil {
			return stat.Size(), nil
		}
		return 0, nil
	}

	preKey, preKeyErr := sourceKey(srcPath)

	written, err := e.copyFile(ctx, srcPath, destPath)
	if err != nil {
		return 0, err
	}

	if e.verifyMode != VerifyNone {
		ok, vErr := e.verify(srcPath, destPath, written)
		if vErr != nil || !ok {
			return 0, fmt.Errorf("verification failed before removing source: %v", vErr)
		}
	}

	// A move against a NAS volume can take long enough for the source
	// to be touched mid-copy; refuse to delete it if its size/mtime key
	// changed since the copy started, even though the copy itself
	// already succeeded.
	if preKeyErr == nil {
		if postKey, err := sourceKey(srcPath); err == nil && postKey != preKey {
			util.WarnLog("Source file %s changed during copy; leaving it in place", srcPath)
			return written, nil
		}
	}

	if err := util.RetryableRemove(srcPath, e.retryConfig); err != nil {
		util.WarnLog("Failed to remove source file %s: %v", srcPath, err)
	}

	return written, nil
}

// sourceKey returns util.GenerateSimpleFileKey for srcPath's current
// size and mtime, used by moveFile to detect a source file that was
// modified while its copy was in flight.
func sourceKey(path string) (string, error) {
	size, mtime, err := util.GetFileMetadata(path)
	if err != nil {
		return "", err
	}
	return util.GenerateSimpleFileKey(size, mtime), nil
}

func (e *Executor) copyFile(ctx context.Context, srcPath, destPath string) (int64, error) {
	src, err := util.RetryableOpen(srcPath, e.retryConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	tempPath := destPath + ".part"
	dest, err := util.RetryableCreate(tempPath, e.retryConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := copyWithContext(ctx, dest, src, e.bufferSize)
	dest.Close()
	if err != nil {
		util.RetryableRemove(tempPath, e.retryConfig)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if err := util.RetryableRename(tempPath, destPath, e.retryConfig); err != nil {
		util.RetryableRemove(tempPath, e.retryConfig)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	return written, nil
}

func (e *Executor) verify(srcPath, destPath string, expectedSize int64) (bool, error) {
	switch e.verifyMode {
	case VerifySize:
		stat, err := os.Stat(destPath)
		if err != nil {
			return false, err
		}
		return stat.Size() == expectedSize, nil
	case VerifyHash:
		srcHash, err := util.GenerateContentHash(srcPath)
		if err != nil {
			return false, err
		}
		destHash, err := util.GenerateContentHash(destPath)
		if err != nil {
			return false, err
		}
		return srcHash == destHash, nil
	default:
		return true, nil
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = 128 * 1024
	}
	buf := make([]byte, bufferSize)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				return written, er
			}
			break
		}
	}
	return written, nil
}
