package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/corpit/blob"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/extract"
	"github.com/poiesic/corpit/storage"
	"github.com/poiesic/corpit/vector"
)

// emptyContentMessage is the fixed error recorded when extraction succeeds
// but yields no usable text. It is a normal failure outcome, not an
// extraction error.
const emptyContentMessage = "extracted content is empty"

// allChunksFailedMessage is recorded when every chunk of a file failed to
// vectorize. Partial success completes the file; total failure does not.
const allChunksFailedMessage = "vectorization failed for every chunk"

// Pipeline orchestrates the ingestion and processing of knowledge files:
// read bytes, extract text, chunk, vectorize, persist status, and refresh
// knowledge-base statistics. Progress is reported to an injected Monitor.
//
// Concurrent runs against the same file are rejected with
// ErrAlreadyProcessing; runs against different files may proceed in parallel
// on the worker pool.
type Pipeline struct {
	files     storage.FileRepository
	kbs       storage.KnowledgeBaseRepository
	blobs     blob.Store
	extractor extract.Extractor
	vectors   vector.Store
	monitor   *Monitor
	pool      *ants.Pool
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[core.ID]struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for background processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	files storage.FileRepository,
	kbs storage.KnowledgeBaseRepository,
	blobs blob.Store,
	extractor extract.Extractor,
	vectors vector.Store,
	monitor *Monitor,
	opts ...Option,
) (*Pipeline, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if kbs == nil {
		return nil, ErrKnowledgeBaseRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if monitor == nil {
		return nil, ErrMonitorRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		files:     files,
		kbs:       kbs,
		blobs:     blobs,
		extractor: extractor,
		vectors:   vectors,
		monitor:   monitor,
		pool:      pool,
		logger:    slog.Default(),
		inFlight:  make(map[core.ID]struct{}),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest stores raw file bytes, creates the pending file record, and submits
// it for background processing. The returned record has its generated ID; its
// status advances asynchronously (poll the monitor or re-read the record).
func (p *Pipeline) Ingest(ctx context.Context, kbID core.ID, name string, data []byte) (*core.KnowledgeFile, error) {
	if _, err := p.kbs.GetKnowledgeBase(ctx, kbID); err != nil {
		return nil, err
	}

	// Re-uploading identical bytes under the same name is a no-op: the
	// existing record is returned instead of creating a duplicate.
	contentHash := core.IDFromContent(string(data))
	existing, err := p.files.ListFilesByKnowledgeBase(ctx, kbID)
	if err != nil {
		return nil, err
	}
	for _, f := range existing {
		if f.Name == name && f.ContentHash == contentHash {
			p.logger.Info("duplicate upload ignored", "knowledgeBaseId", kbID, "fileId", f.Id, "name", name)
			return f, nil
		}
	}

	// The content hash keys the stored path so same-named files with
	// different bytes never alias each other's blobs.
	storedPath, err := p.blobs.Write(path.Join(fmt.Sprintf("%d", kbID), fmt.Sprintf("%x", uint64(contentHash)), name), data)
	if err != nil {
		return nil, err
	}

	file := &core.KnowledgeFile{
		KnowledgeBaseId: kbID,
		Name:            name,
		Path:            storedPath,
		Size:            int64(len(data)),
		ContentHash:     contentHash,
		FileType:        strings.ToLower(filepath.Ext(name)),
		Status:          core.StatusPending,
	}
	added, err := p.files.AddFiles(ctx, file)
	if err != nil {
		return nil, err
	}
	file = added[0]

	if err := p.RefreshStatistics(ctx, kbID); err != nil {
		p.logger.Error("statistics refresh failed", "knowledgeBaseId", kbID, "err", err)
	}

	if err := p.Submit(file.Id); err != nil {
		return nil, err
	}
	return file, nil
}

// ProcessFile runs the full pipeline for one file synchronously.
// Step failures are converted into a persisted failed status (with the
// message recorded on the file) and returned to the caller; background
// callers should use Submit, which logs instead.
func (p *Pipeline) ProcessFile(ctx context.Context, fileID core.ID) error {
	if !p.claim(fileID) {
		return ErrAlreadyProcessing
	}
	defer p.release(fileID)
	return p.run(ctx, fileID)
}

// Reprocess resets a file to pending, discards its superseded vectors, and
// reruns the pipeline. Previous chunk/vector data is never reused.
func (p *Pipeline) Reprocess(ctx context.Context, fileID core.ID) error {
	if !p.claim(fileID) {
		return ErrAlreadyProcessing
	}
	defer p.release(fileID)

	file, err := p.files.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	file.Status = core.StatusPending
	file.Error = ""
	file.ChunkCount = 0
	file.VectorIDs = nil
	if _, err := p.files.UpdateFiles(ctx, file); err != nil {
		return err
	}

	if _, err := p.vectors.DeleteFile(ctx, fileID); err != nil {
		// The rerun produces a fresh ID list either way; stale vectors are
		// an index hygiene problem, not a correctness one.
		p.logger.Warn("failed to remove superseded vectors", "fileId", fileID, "err", err)
	}

	return p.run(ctx, fileID)
}

// Submit schedules ProcessFile on the worker pool, fire-and-forget.
// Processing errors are logged, never returned.
func (p *Pipeline) Submit(fileID core.ID) error {
	return p.pool.Submit(func() {
		if err := p.ProcessFile(context.Background(), fileID); err != nil {
			p.logger.Error("background processing failed", "fileId", fileID, "err", err)
		}
	})
}

// SubmitReprocess schedules Reprocess on the worker pool, fire-and-forget.
func (p *Pipeline) SubmitReprocess(fileID core.ID) error {
	return p.pool.Submit(func() {
		if err := p.Reprocess(context.Background(), fileID); err != nil {
			p.logger.Error("background reprocessing failed", "fileId", fileID, "err", err)
		}
	})
}

// DeleteFile removes a file: its indexed vectors, its stored bytes, and the
// record itself, then refreshes the owning knowledge base's statistics.
func (p *Pipeline) DeleteFile(ctx context.Context, fileID core.ID) error {
	if !p.claim(fileID) {
		return ErrAlreadyProcessing
	}
	defer p.release(fileID)

	file, err := p.files.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	if _, err := p.vectors.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	if _, err := p.blobs.Delete(file.Path); err != nil {
		p.logger.Warn("failed to delete stored bytes", "fileId", fileID, "path", file.Path, "err", err)
	}
	if err := p.files.DeleteFiles(ctx, fileID); err != nil {
		return err
	}

	return p.RefreshStatistics(ctx, file.KnowledgeBaseId)
}

// DeleteKnowledgeBase removes a knowledge base and everything it owns:
// every contained file (vectors, bytes, records) and finally the base itself.
func (p *Pipeline) DeleteKnowledgeBase(ctx context.Context, kbID core.ID) error {
	files, err := p.files.ListFilesByKnowledgeBase(ctx, kbID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := p.DeleteFile(ctx, file.Id); err != nil {
			return err
		}
	}
	return p.kbs.DeleteKnowledgeBases(ctx, kbID)
}

// RefreshStatistics recomputes a knowledge base's aggregate file count and
// total size by summing its contained files. The recomputation is idempotent.
func (p *Pipeline) RefreshStatistics(ctx context.Context, kbID core.ID) error {
	kb, err := p.kbs.GetKnowledgeBase(ctx, kbID)
	if err != nil {
		return err
	}

	files, err := p.files.ListFilesByKnowledgeBase(ctx, kbID)
	if err != nil {
		return err
	}

	var totalSize int64
	for _, file := range files {
		totalSize += file.Size
	}
	kb.FileCount = int64(len(files))
	kb.TotalSize = totalSize

	_, err = p.kbs.UpdateKnowledgeBases(ctx, kb)
	return err
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// claim reserves exclusive processing rights for a file ID.
func (p *Pipeline) claim(fileID core.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[fileID]; busy {
		return false
	}
	p.inFlight[fileID] = struct{}{}
	return true
}

func (p *Pipeline) release(fileID core.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, fileID)
}

// run executes the pipeline steps for one file. The caller holds the
// per-file claim. Every step failure lands in the persisted record as a
// failed status plus message.
func (p *Pipeline) run(ctx context.Context, fileID core.ID) error {
	file, err := p.files.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	p.monitor.Register(fileID, file.Name)

	file.Status = core.StatusProcessing
	file.Error = ""
	if _, err := p.files.UpdateFiles(ctx, file); err != nil {
		p.monitor.MarkFailed(fileID, err.Error())
		return err
	}
	p.monitor.UpdateProgress(fileID, 0, core.StatusProcessing)

	kb, err := p.kbs.GetKnowledgeBase(ctx, file.KnowledgeBaseId)
	if err != nil {
		return p.failFile(ctx, file, fmt.Sprintf("loading knowledge base: %v", err))
	}

	data, err := p.blobs.Read(file.Path)
	if err != nil {
		return p.failFile(ctx, file, err.Error())
	}
	p.monitor.UpdateProgress(fileID, 10)

	text, err := p.extractor.Extract(data, file.FileType)
	if err != nil {
		return p.failFile(ctx, file, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return p.failFile(ctx, file, emptyContentMessage)
	}
	p.monitor.UpdateProgress(fileID, 30)

	chunks := SplitText(text, kb.ChunkSize, kb.ChunkOverlap)
	p.monitor.UpdateProgress(fileID, 40)

	// Vectorize in index order; the ID list preserves that order.
	// A single chunk's failure is logged and skipped, but total failure
	// fails the file.
	vectorIDs := make([]string, 0, len(chunks))
	for i, content := range chunks {
		chunk := &core.Chunk{
			FileId:          file.Id,
			KnowledgeBaseId: file.KnowledgeBaseId,
			Index:           i,
			Content:         content,
			FileName:        file.Name,
			FileType:        file.FileType,
		}
		id, err := p.vectors.AddChunk(ctx, chunk)
		if err != nil {
			p.logger.Warn("chunk vectorization failed",
				"fileId", file.Id, "index", i, "err", err)
			continue
		}
		vectorIDs = append(vectorIDs, id)
		p.monitor.UpdateProgress(fileID, 40+55*float64(i+1)/float64(len(chunks)))
	}

	if len(chunks) > 0 && len(vectorIDs) == 0 {
		return p.failFile(ctx, file, allChunksFailedMessage)
	}

	file.ChunkCount = len(chunks)
	file.VectorIDs = vectorIDs
	file.Status = core.StatusCompleted
	file.Error = ""
	if _, err := p.files.UpdateFiles(ctx, file); err != nil {
		return p.failFile(ctx, file, fmt.Sprintf("persisting completion: %v", err))
	}

	if err := p.RefreshStatistics(ctx, file.KnowledgeBaseId); err != nil {
		p.logger.Error("statistics refresh failed", "knowledgeBaseId", file.KnowledgeBaseId, "err", err)
	}

	p.monitor.MarkCompleted(fileID)
	p.logger.Info("file processed",
		"fileId", file.Id, "chunks", len(chunks), "vectors", len(vectorIDs))
	return nil
}

// failFile persists a failed status with the given message, notifies the
// monitor, refreshes statistics, and returns the failure to the synchronous
// caller.
func (p *Pipeline) failFile(ctx context.Context, file *core.KnowledgeFile, message string) error {
	file.Status = core.StatusFailed
	file.Error = message
	if _, err := p.files.UpdateFiles(ctx, file); err != nil {
		p.logger.Error("failed to persist failure status", "fileId", file.Id, "err", err)
	}
	p.monitor.MarkFailed(file.Id, message)
	if err := p.RefreshStatistics(ctx, file.KnowledgeBaseId); err != nil {
		p.logger.Error("statistics refresh failed", "knowledgeBaseId", file.KnowledgeBaseId, "err", err)
	}
	return fmt.Errorf("processing file %d: %s", file.Id, message)
}
