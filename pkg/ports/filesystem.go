package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// ListDir returns the entries directly under dir, sorted by name.
	ListDir(dir string) ([]DirEntry, error)

	// ClearFiles deletes every regular file under dir, recursively.
	// Directories are left in place. Returns the number of files removed.
	ClearFiles(dir string) (int, error)
}

// DirEntry is a single entry returned by FileSystem.ListDir.
type DirEntry struct {
	Name  string
	IsDir bool
}
