package blob

// Store reads and writes raw file bytes by relative path.
// The ingestion pipeline treats it as a pure I/O boundary; any failure
// surfaces as a generic I/O error.
type Store interface {
	// Read returns the full contents of the file at the given relative path.
	Read(path string) ([]byte, error)

	// Write stores data at the given relative path, creating parent
	// directories as needed, and returns the path the data was stored under.
	Write(path string, data []byte) (string, error)

	// Delete removes the file at the given relative path.
	// Returns true if a file was removed, false if none existed.
	Delete(path string) (bool, error)
}
