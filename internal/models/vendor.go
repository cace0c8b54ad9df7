// internal/models/vendor.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Location is a point stored longitude first. The zero value [0,0] is a real
// point, not "unset".
type Location [2]float64

func NewLocation(longitude, latitude float64) Location {
	return Location{longitude, latitude}
}

func (l Location) Longitude() float64 { return l[0] }
func (l Location) Latitude() float64  { return l[1] }

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if l[0] < -180 || l[0] > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", l[0])
	}
	if l[1] < -90 || l[1] > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", l[1])
	}
	return nil
}

type SocialMedia struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Whatsapp  string `json:"whatsapp,omitempty"`
}

type Vendor struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Logo          string        `json:"logo"`
	Address       string        `json:"address"`
	Location      Location      `json:"location"`
	OpeningHours  string        `json:"openingHours"`
	ContactNumber string        `json:"contactNumber"`
	Email         string        `json:"email"`
	Website       string        `json:"website"`
	SocialMedia   SocialMedia   `json:"socialMedia"`
	Deals         []DealSummary `json:"deals"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MarshalJSON keeps "deals" an array even when the vendor owns none.
func (v Vendor) MarshalJSON() ([]byte, error) {
	type alias Vendor
	if v.Deals == nil {
		v.Deals = []DealSummary{}
	}
	return json.Marshal(alias(v))
}

// VendorRef is the vendor embedded in deal responses.
type VendorRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Address string `json:"address"`
}

// NearbyVendor is one row of a proximity search result.
type NearbyVendor struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Logo            string   `json:"logo"`
	Location        Location `json:"location"`
	Distance        int64    `json:"distance"`
	ActiveDealCount int      `json:"activeDealCount"`
}
