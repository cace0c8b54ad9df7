// Package schemas holds the JSON schemas request bodies are validated
// against before they are decoded into typed commands.
package schemas

import "dealsdash/internal/common/validation"

const httpURL = `{"type": "string", "maxLength": 2048}`

var CreateCategory = validation.MustCompile("create-category", `{
	"type": "object",
	"required": ["name"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 100},
		"icon": `+httpURL+`
	}
}`)

var UpdateCategory = validation.MustCompile("update-category", `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 100},
		"icon": `+httpURL+`
	}
}`)

const socialMedia = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"facebook":  {"type": "string", "maxLength": 512},
		"instagram": {"type": "string", "maxLength": 512},
		"whatsapp":  {"type": "string", "maxLength": 64}
	}
}`

const vendorProperties = `
		"name":          {"type": "string", "minLength": 1, "maxLength": 200},
		"logo":          ` + httpURL + `,
		"address":       {"type": "string", "maxLength": 500},
		"longitude":     {"type": "number", "minimum": -180, "maximum": 180},
		"latitude":      {"type": "number", "minimum": -90, "maximum": 90},
		"openingHours":  {"type": "string", "maxLength": 200},
		"contactNumber": {"type": "string", "maxLength": 64},
		"email":         {"type": "string", "maxLength": 254},
		"website":       ` + httpURL + `,
		"socialMedia":   ` + socialMedia

var CreateVendor = validation.MustCompile("create-vendor", `{
	"type": "object",
	"required": ["name"],
	"additionalProperties": false,
	"properties": {`+vendorProperties+`}
}`)

var UpdateVendor = validation.MustCompile("update-vendor", `{
	"type": "object",
	"additionalProperties": false,
	"properties": {`+vendorProperties+`}
}`)

const dealProperties = `
		"title":       {"type": "string", "minLength": 1, "maxLength": 200},
		"description": {"type": "string", "minLength": 1, "maxLength": 5000},
		"banner":      ` + httpURL + `,
		"categoryId":  {"type": "string", "format": "uuid"},
		"vendorId":    {"type": "string", "format": "uuid"},
		"startDate":   {"type": "string", "format": "date-time"},
		"expireDate":  {"type": "string", "format": "date-time"},
		"isActive":    {"type": "boolean"},
		"isFeatured":  {"type": "boolean"}`

var CreateDeal = validation.MustCompile("create-deal", `{
	"type": "object",
	"required": ["title", "description", "categoryId", "vendorId", "expireDate"],
	"additionalProperties": false,
	"properties": {`+dealProperties+`}
}`)

var UpdateDeal = validation.MustCompile("update-deal", `{
	"type": "object",
	"additionalProperties": false,
	"properties": {`+dealProperties+`}
}`)
