// internal/models/deal.go
package models

import "time"

type Deal struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Banner      string       `json:"banner"`
	CategoryID  string       `json:"categoryId"`
	VendorID    string       `json:"vendorId"`
	StartDate   time.Time    `json:"startDate"`
	ExpireDate  time.Time    `json:"expireDate"`
	IsActive    bool         `json:"isActive"`
	IsFeatured  bool         `json:"isFeatured"`
	Category    *CategoryRef `json:"category,omitempty"`
	Vendor      *VendorRef   `json:"vendor,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// DealSummary is the deal listed under its vendor.
type DealSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Banner     string    `json:"banner"`
	ExpireDate time.Time `json:"expireDate"`
	IsActive   bool      `json:"isActive"`
	IsFeatured bool      `json:"isFeatured"`
}

// DealFilter narrows GET /deals. Nil fields do not filter.
type DealFilter struct {
	Active     *bool
	Featured   *bool
	CategoryID *string
	VendorID   *string
}

// ExpiredDeal is one deal deactivated by a sweep.
type ExpiredDeal struct {
	ID       string `json:"id"`
	VendorID string `json:"vendorId"`
	Title    string `json:"title"`
}
