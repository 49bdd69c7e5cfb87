package sorter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"filesort/internal/category"
	"filesort/internal/classify"
	"filesort/internal/collision"
	"filesort/internal/failure"
	"filesort/internal/fileutil"
	"filesort/internal/logging"
)

const bucketPerm = 0o755

// Processor sorts a source tree into category buckets.
type Processor struct {
	fs         afero.Fs
	classifier *classify.Classifier
	resolver   *collision.Resolver
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a processor on the OS filesystem. A nil table uses the
// built-in categories.
func New(table *category.Table, opts Options, logger *slog.Logger) *Processor {
	return NewWithFs(table, opts, logger, afero.NewOsFs())
}

// NewWithFs allows injecting the filesystem (used in tests).
func NewWithFs(table *category.Table, opts Options, logger *slog.Logger, fsys afero.Fs) *Processor {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Processor{
		fs:         fsys,
		classifier: classify.New(table),
		resolver:   collision.New(fsys),
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "sorter"),
		now:        time.Now,
	}
}

// Table returns the category table the processor classifies with.
func (p *Processor) Table() *category.Table {
	return p.classifier.Table()
}

// EnsureBuckets creates dest and one directory per category plus Others.
// Existing directories are left alone; anything else in the way is fatal.
func (p *Processor) EnsureBuckets(ctx context.Context, dest string) error {
	logger := logging.WithContext(ctx, p.logger)
	dirs := []string{dest}
	for _, name := range p.Table().Names() {
		dirs = append(dirs, filepath.Join(dest, name))
	}
	for _, dir := range dirs {
		if err := p.fs.MkdirAll(dir, bucketPerm); err != nil {
			return failure.Wrap(failure.ErrBucketCreate, "bootstrap", "create bucket", dir, err)
		}
		info, err := p.fs.Stat(dir)
		if err != nil {
			return failure.Wrap(failure.ErrBucketCreate, "bootstrap", "stat bucket", dir, err)
		}
		if !info.IsDir() {
			return failure.Wrap(failure.ErrBucketCreate, "bootstrap", "create bucket", dir+" exists and is not a directory", nil)
		}
	}
	logger.Debug("buckets ready",
		logging.String("destination", dest),
		logging.Int("bucket_count", len(dirs)-1),
	)
	return nil
}

// Process discovers every file under source and relocates each into its
// bucket under dest. Per-file problems are collected in the Result; the
// returned error is non-nil only for fatal conditions or cancellation, in
// which case the Result still describes the work done so far.
func (p *Processor) Process(ctx context.Context, source, dest string) (Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	result := Result{
		RunID:   runID,
		Mode:    p.opts.Mode.String(),
		Source:  source,
		Dest:    dest,
		Counts:  make(map[string]int),
		Started: p.now(),
	}
	finish := func(err error) (Result, error) {
		result.Finished = p.now()
		return result, err
	}

	if err := p.checkSource(source); err != nil {
		return finish(err)
	}
	if err := p.EnsureBuckets(ctx, dest); err != nil {
		return finish(err)
	}

	records, err := p.discover(ctx, source, dest, &result)
	if err != nil {
		return finish(err)
	}
	logger.Info("sort started",
		logging.String("source", source),
		logging.String("destination", dest),
		logging.String("mode", result.Mode),
		logging.Int("file_count", len(records)),
		logging.Int("skipped_count", len(result.Skipped)),
	)
	p.emit(Event{Kind: EventPlanned, Pending: len(records)})

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "sort cancelled", "sort_cancelled",
				logging.Int("relocated", result.Total),
				logging.Int("remaining", result.Discovered-result.Total-len(result.Failures)-len(result.Skipped)),
				logging.String(logging.FieldErrorHint, "rerun to sort the remaining files"),
				logging.String(logging.FieldImpact, "remaining files were left in the source"),
			)
			return finish(err)
		}
		p.processRecord(ctx, record, dest, &result)
	}

	result.Finished = p.now()
	logger.Info("sort completed",
		logging.Int("relocated", result.Total),
		logging.Int("failed", len(result.Failures)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int64("bytes", result.Bytes),
		logging.Duration("duration", result.Duration()),
	)
	return result, nil
}

// checkSource rejects a source that is missing, not a directory, or cannot be
// listed. Nothing is created before it passes.
func (p *Processor) checkSource(source string) error {
	info, err := p.fs.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failure.Wrap(failure.ErrSourceMissing, "validate", "stat source", source, err)
		}
		return failure.Wrap(failure.ErrSourceUnreadable, "validate", "stat source", source, err)
	}
	if !info.IsDir() {
		return failure.Wrap(failure.ErrSourceNotDirectory, "validate", "stat source", source, nil)
	}
	dir, err := p.fs.Open(source)
	if err != nil {
		return failure.Wrap(failure.ErrSourceUnreadable, "validate", "open source", source, err)
	}
	defer dir.Close()
	if _, err := dir.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return failure.Wrap(failure.ErrSourceUnreadable, "validate", "list source", source, err)
	}
	return nil
}

func (p *Processor) discover(ctx context.Context, source, dest string, result *Result) ([]classify.FileRecord, error) {
	logger := logging.WithContext(ctx, p.logger)
	w := newWalker(p.fs, p.opts.Traversal, logger)
	w.prune(dest)
	for _, name := range p.Table().Names() {
		w.prune(filepath.Join(dest, name))
	}
	err := w.walk(ctx, source)

	result.Discovered = len(w.records) + len(w.skipped) + len(w.failed)
	result.Skipped = append(result.Skipped, w.skipped...)
	for _, f := range w.failed {
		result.Failures = append(result.Failures, f)
		logging.WarnWithContext(logger, "directory unreadable", "walk_failed",
			logging.String("path", f.Path),
			logging.String("failure_kind", string(f.Kind)),
			logging.Error(f.Err),
			logging.String(logging.FieldErrorHint, failure.Hint(f.Kind)),
			logging.String(logging.FieldImpact, "files below this directory were not sorted"),
		)
		p.emit(Event{Kind: EventFailed, Name: f.Name, Source: f.Path, Err: f.Err})
	}
	for _, path := range w.skipped {
		p.emit(Event{Kind: EventSkipped, Name: filepath.Base(path), Source: path})
	}
	if err != nil {
		return nil, err
	}
	return w.records, nil
}

func (p *Processor) processRecord(ctx context.Context, record classify.FileRecord, dest string, result *Result) {
	logger := logging.WithContext(ctx, p.logger)
	bucket := p.classifier.Classify(record)

	target, written, err := p.relocate(record, filepath.Join(dest, bucket, record.Name))
	if err != nil {
		err = failure.Wrap(failure.ErrRelocate, "relocate", p.opts.Mode.String(), record.Path, err)
		f := result.addFailure(record.Name, record.Path, err)
		logging.WarnWithContext(logger, "file not sorted", "relocate_failed",
			logging.String("path", record.Path),
			logging.String(logging.FieldCategory, bucket),
			logging.String("failure_kind", string(f.Kind)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failure.Hint(f.Kind)),
			logging.String(logging.FieldImpact, "file left in source"),
		)
		p.emit(Event{Kind: EventFailed, Name: record.Name, Category: bucket, Source: record.Path, Err: err})
		return
	}

	action := ActionCopied
	if p.opts.Mode == ModeMove {
		action = ActionMoved
	}
	result.Counts[bucket]++
	result.Total++
	result.Bytes += written
	logger.Info("file sorted",
		logging.String(logging.FieldAction, string(action)),
		logging.String(logging.FieldCategory, bucket),
		logging.String("source", record.Path),
		logging.String("destination", target),
	)
	p.emit(Event{
		Kind:        EventRelocated,
		Action:      action,
		Name:        record.Name,
		Category:    bucket,
		Source:      record.Path,
		Destination: target,
		Bytes:       written,
	})
}

// relocate resolves a free name for desired and transfers the file there. If
// another writer claims the name between resolution and creation the name is
// resolved once more.
func (p *Processor) relocate(record classify.FileRecord, desired string) (string, int64, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		target, err := p.resolver.Resolve(desired)
		if err != nil {
			return "", 0, fmt.Errorf("resolve destination name: %w", err)
		}
		written, err := p.transfer(record, target)
		if err == nil {
			return target, written, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", 0, err
		}
		lastErr = err
	}
	return "", 0, lastErr
}

func (p *Processor) transfer(record classify.FileRecord, target string) (int64, error) {
	if p.opts.Mode == ModeMove && record.Symlink {
		if err := fileutil.MoveSymlink(p.fs, record.Path, target); err != nil {
			return 0, err
		}
		return record.Size, nil
	}
	if p.opts.Mode == ModeMove {
		if err := fileutil.MoveFile(p.fs, record.Path, target); err != nil {
			return 0, err
		}
		return record.Size, nil
	}
	if p.opts.Verify {
		return fileutil.CopyFileVerified(p.fs, record.Path, target)
	}
	return fileutil.CopyFile(p.fs, record.Path, target)
}

func (p *Processor) emit(event Event) {
	if p.opts.OnEvent != nil {
		p.opts.OnEvent(event)
	}
}
