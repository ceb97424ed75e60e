package constants

import "slices"

// Unknown marks a record field with no determined content.
const Unknown = "unknown"

// NotProvided is the prompt placeholder used when no document is attached.
const NotProvided = "N/A"

// Inquiry schema fields, in declaration order.
const (
	FieldYachtModel          = "Yacht Model"
	FieldYachtLength         = "Yacht Length"
	FieldYearOfManufacture   = "Year of Manufacture"
	FieldValue               = "Current Value/Purchase Price"
	FieldCurrentLocation     = "Current Location"
	FieldCruisingArea        = "Intended Cruising Area"
	FieldOwnerName           = "Owner's Name"
	FieldOwnerContact        = "Owner's Contact Information"
	FieldOwnerExperience     = "Owner's Boating Experience"
	FieldPreviousClaims      = "Previous Insurance Claims"
	FieldAdditionalEquipment = "Additional Equipment"
	FieldCurrentCoverage     = "Current Insurance Coverage"
	FieldOther               = "Other"
)

var schemaFields = []string{
	FieldYachtModel,
	FieldYachtLength,
	FieldYearOfManufacture,
	FieldValue,
	FieldCurrentLocation,
	FieldCruisingArea,
	FieldOwnerName,
	FieldOwnerContact,
	FieldOwnerExperience,
	FieldPreviousClaims,
	FieldAdditionalEquipment,
	FieldCurrentCoverage,
	FieldOther,
}

// Fields returns the schema field names in declaration order.
func Fields() []string {
	return slices.Clone(schemaFields)
}

// IsField reports whether name is a schema field (exact match).
func IsField(name string) bool {
	return slices.Contains(schemaFields, name)
}

// Gap-filling defaults.
const (
	SearchQualifier    = "yacht insurance details"
	SearchResultCount  = 3
	SearchCharLimit    = 500
	TruncationMarker   = "..."
	DefaultFillWorkers = 4
)
