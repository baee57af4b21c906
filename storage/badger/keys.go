package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/corpit/core"
)

// Key prefixes for different data types
const (
	fileRecordPrefix  = "kfrec"
	fileKBPrefix      = "kfreckb"
	fileIDSeq         = "kfrecseq"
	kbRecordPrefix    = "kbrec"
	kbIDSeq           = "kbrecseq"
	chunkRecordPrefix = "ckrec"
	chunkFilePrefix   = "ckrecf"
)

// makeFileKey generates a key for a knowledge file by ID.
func makeFileKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", fileRecordPrefix, id))
}

// makeFileKBKey generates a composite key for the knowledge-base index.
// Format: prefix:kbID:fileID
func makeFileKBKey(kbID, fileID core.ID) []byte {
	prefix := fileKBPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for kbID + 8 bytes for fileID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(kbID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	return buf
}

// makePartialFileKBKey generates a partial key for listing a knowledge
// base's files.
// Format: prefix:kbID
func makePartialFileKBKey(kbID core.ID) []byte {
	prefix := fileKBPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for kbID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(kbID))
	return buf
}

// makeKBKey generates a key for a knowledge base by ID.
func makeKBKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", kbRecordPrefix, id))
}

// makeChunkKey generates a key for a chunk by its opaque ID.
func makeChunkKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkRecordPrefix, id))
}

// makeChunkFileKey generates a composite key for the file index.
// Format: prefix:fileID:index
func makeChunkFileKey(fileID core.ID, index int) []byte {
	prefix := chunkFilePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for fileID + 8 bytes for chunk index
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkFileKey generates a partial key for listing a file's chunks.
// Format: prefix:fileID
func makePartialChunkFileKey(fileID core.ID) []byte {
	prefix := chunkFilePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for fileID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	return buf
}
