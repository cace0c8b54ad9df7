// internal/models/commands.go
package models

import "time"

// Commands are produced by the API layer after schema validation. Update
// commands use pointers: nil means "leave unchanged".

type CreateCategoryCommand struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type UpdateCategoryCommand struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

type CreateVendorCommand struct {
	Name          string      `json:"name"`
	Logo          string      `json:"logo"`
	Address       string      `json:"address"`
	Longitude     *float64    `json:"longitude"`
	Latitude      *float64    `json:"latitude"`
	OpeningHours  string      `json:"openingHours"`
	ContactNumber string      `json:"contactNumber"`
	Email         string      `json:"email"`
	Website       string      `json:"website"`
	SocialMedia   SocialMedia `json:"socialMedia"`
}

// SocialMediaPatch merges into the stored record field by field.
type SocialMediaPatch struct {
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	Whatsapp  *string `json:"whatsapp"`
}

type UpdateVendorCommand struct {
	Name          *string           `json:"name"`
	Logo          *string           `json:"logo"`
	Address       *string           `json:"address"`
	Longitude     *float64          `json:"longitude"`
	Latitude      *float64          `json:"latitude"`
	OpeningHours  *string           `json:"openingHours"`
	ContactNumber *string           `json:"contactNumber"`
	Email         *string           `json:"email"`
	Website       *string           `json:"website"`
	SocialMedia   *SocialMediaPatch `json:"socialMedia"`
}

type CreateDealCommand struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Banner      string     `json:"banner"`
	CategoryID  string     `json:"categoryId"`
	VendorID    string     `json:"vendorId"`
	StartDate   *time.Time `json:"startDate"`
	ExpireDate  time.Time  `json:"expireDate"`
	IsActive    *bool      `json:"isActive"`
	IsFeatured  *bool      `json:"isFeatured"`
}

type UpdateDealCommand struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Banner      *string    `json:"banner"`
	CategoryID  *string    `json:"categoryId"`
	VendorID    *string    `json:"vendorId"`
	StartDate   *time.Time `json:"startDate"`
	ExpireDate  *time.Time `json:"expireDate"`
	IsActive    *bool      `json:"isActive"`
	IsFeatured  *bool      `json:"isFeatured"`
}
