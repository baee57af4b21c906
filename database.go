// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpit

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/corpit/ai"
	"github.com/poiesic/corpit/ai/openai"
	"github.com/poiesic/corpit/blob"
	"github.com/poiesic/corpit/extract"
	"github.com/poiesic/corpit/ingestion"
	"github.com/poiesic/corpit/reindex"
	"github.com/poiesic/corpit/search"
	"github.com/poiesic/corpit/storage"
	"github.com/poiesic/corpit/storage/badger"
	"github.com/poiesic/corpit/vector"
)

// Database bundles the storage backend, repositories, blob store, and AI
// provider behind one handle. It is the embedding surface of the library:
// open it at a data directory, then construct pipelines, monitors, and
// searchers from it.
type Database struct {
	backend   *badger.Backend
	fileRepo  storage.FileRepository
	kbRepo    storage.KnowledgeBaseRepository
	chunkRepo storage.ChunkRepository
	blobs     blob.Store
	provider  ai.Provider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the configuration used to construct the OpenAI-compatible
// provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider instead of constructing one
// from config. Intended for tests and embedders with custom transports.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens (or creates) a database rooted at dataPath. Record
// storage lives under dataPath/db and raw file bytes under dataPath/files.
func NewDatabase(dataPath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filepath.Join(dataPath, "db"), false)
	if err != nil {
		return nil, err
	}

	fileRepo, err := badger.NewFileRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	kbRepo, err := badger.NewKnowledgeBaseRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)

	blobs, err := blob.NewFSStore(filepath.Join(dataPath, "files"))
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		fileRepo:  fileRepo,
		kbRepo:    kbRepo,
		chunkRepo: chunkRepo,
		blobs:     blobs,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

// Close releases the provider and the storage backend. Repositories share
// the backend and become unusable afterwards.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) FileRepository() storage.FileRepository {
	return db.fileRepo
}

func (db *Database) KnowledgeBaseRepository() storage.KnowledgeBaseRepository {
	return db.kbRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) BlobStore() blob.Store {
	return db.blobs
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

// NewMonitor creates a progress monitor over this database's file records.
func (db *Database) NewMonitor(opts ...ingestion.MonitorOption) (*ingestion.Monitor, error) {
	return ingestion.NewMonitor(db.fileRepo, opts...)
}

// NewIngestionPipeline wires a pipeline from this database's components and
// the given monitor.
func (db *Database) NewIngestionPipeline(monitor *ingestion.Monitor, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	indexer, err := vector.NewIndexer(db.provider.Embedder(), db.chunkRepo)
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(db.fileRepo, db.kbRepo, db.blobs,
		extract.NewDocExtractor(), indexer, monitor, opts...)
}

// NewSearcher creates a similarity searcher over this database's chunks.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chunkRepo, db.provider, opts...)
}

// NewReindexer creates a reindexer that re-embeds every stored chunk.
// progress: where to write progress output (typically os.Stderr)
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(db.chunkRepo, db.provider.Embedder(), config, progress)
}
