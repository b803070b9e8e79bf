package storage

import "errors"

// ErrNotFound is returned by Retrieve when the named object does not exist.
// First runs rely on this to start with an empty seen-set.
var ErrNotFound = errors.New("object not found")

// Backend defines the contract for storage operations
type Backend interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
