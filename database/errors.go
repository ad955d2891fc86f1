package db

import "fmt"

// ConnectionError is returned when the database cannot be opened or reached.
type ConnectionError struct {
	Driver string
	Host   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s at %s: %v", e.Driver, e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is returned when a catalog or data query fails.
type QueryError struct {
	Table string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("querying catalog: %v", e.Err)
	}
	return fmt.Sprintf("querying table %s: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FileWriteError is returned when an export file cannot be created or written.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// SchemaReplaceError is returned when a destination table cannot be dropped,
// recreated or filled. Stage names the step that failed.
type SchemaReplaceError struct {
	Table string
	Stage string
	Err   error
}

func (e *SchemaReplaceError) Error() string {
	return fmt.Sprintf("replacing table %s (%s): %v", e.Table, e.Stage, e.Err)
}

func (e *SchemaReplaceError) Unwrap() error { return e.Err }
