package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// AppendFile appends data to a file, creating it if necessary.
	AppendFile(path string, data []byte) error

	// Rename moves a file, replacing the destination if it exists.
	Rename(oldPath, newPath string) error

	// ReadDir returns the names of the entries in a directory.
	ReadDir(path string) ([]string, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// RemoveAll deletes a path and any children it contains.
	RemoveAll(path string) error
}
