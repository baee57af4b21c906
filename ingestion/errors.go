package ingestion

import "errors"

var (
	// ErrFileRepositoryRequired is returned when a file repository is not provided.
	ErrFileRepositoryRequired = errors.New("file repository required")

	// ErrKnowledgeBaseRepositoryRequired is returned when a knowledge-base repository is not provided.
	ErrKnowledgeBaseRepositoryRequired = errors.New("knowledge base repository required")

	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrMonitorRequired is returned when a progress monitor is not provided.
	ErrMonitorRequired = errors.New("progress monitor required")

	// ErrAlreadyProcessing is returned when a pipeline run is requested for a
	// file that already has a run in flight.
	ErrAlreadyProcessing = errors.New("file is already being processed")
)
