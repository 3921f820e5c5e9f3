// package models defines the data model for the music catalog exporter
package models

import (
	"context"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the data access operations shared by persistent models.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error        // Create inserts a new model
	Get(ctx context.Context, id string) (T, error)    // Get retrieves a model by its ID
	List(ctx context.Context, limit int) ([]T, error) // List retrieves the most recent models
}
