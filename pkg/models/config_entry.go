package models

import "time"

// ValueType is the type inferred for a configuration value.
type ValueType string

const (
	TypeString  ValueType = "String"
	TypeBoolean ValueType = "Boolean"
	TypeInteger ValueType = "Integer"
	TypeDecimal ValueType = "Decimal"
	TypePath    ValueType = "Path"
)

// ConfigEntry is one key of a legacy INI file. (FileName, Section, Key) is
// unique among active entries.
type ConfigEntry struct {
	ID          int64      `json:"id" bson:"_id"`
	FileName    string     `json:"fileName" bson:"fileName"`
	Section     string     `json:"section" bson:"section"`
	Key         string     `json:"key" bson:"key"`
	Value       string     `json:"value" bson:"value"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Type        ValueType  `json:"type" bson:"type"`
	Critical    bool       `json:"critical" bson:"critical"`
	Active      bool       `json:"active" bson:"active"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	CreatedBy   string     `json:"createdBy" bson:"createdBy"`
	UpdatedBy   string     `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}
