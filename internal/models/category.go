// internal/models/category.go
package models

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryWithCount carries the number of active, unexpired deals.
type CategoryWithCount struct {
	Category
	DealCount int `json:"dealCount"`
}

// CategoryRef is the category embedded in deal responses.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
