package models

import "time"

// Model is a row-backed entity with a stable ID, audit timestamps and soft delete.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	IsDeleted() bool
	Validate() error
}

// Repository stores one model type.
//
// Delete is soft: deleted rows no longer come back from Get, List or Search.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error

	// List filters on the criteria keys the implementation documents. Unknown keys are ignored.
	List(criteria map[string]any) ([]T, error)
	// Search ranks rows against free text. A positive limit caps the result.
	Search(query string, limit int) ([]T, error)
}
