// internal/storage/factory.go
package storage

import (
	"fmt"

	"gorm.io/gorm"
)

// Constructor builds a Backend over an open database handle. The gormdb
// package registers itself here so callers depend on the interface only.
type Constructor func(db *gorm.DB) Backend

var constructors = map[string]Constructor{}

// Register makes a backend constructor available under a name.
func Register(name string, fn Constructor) {
	constructors[name] = fn
}

// NewBackend creates a storage backend by registered name.
func NewBackend(name string, db *gorm.DB) (Backend, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %s", name)
	}
	return fn(db), nil
}
