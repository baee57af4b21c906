// Package vector turns chunk text into searchable vectors.
//
// The Store interface is what the ingestion pipeline programs against: give
// it a chunk, get back an opaque vector identifier; tell it a file is gone,
// and its chunks leave the index. Indexer is the production implementation,
// combining an ai.Embedder with a storage.ChunkRepository.
//
// All persisted vectors are unit length, so the similarity score used at
// query time is a plain dot product.
package vector
