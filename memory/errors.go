package memory

import "fmt"

// ValidationError reports missing or unusable caller input. It is raised
// before any network or storage call is attempted.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Detail)
}

// ProviderError wraps a failed or malformed embedding call. Fatal to the
// enclosing operation; no retry.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failed query or transaction. Fatal to the
// enclosing operation; no partial results are returned.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
