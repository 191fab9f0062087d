package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FieldTypeText   = "text"
	FieldTypeUpload = "upload"
)

// CustomField is one entry of a product's creative-submission form definition.
// It is a tagged variant on FieldType: text fields carry CharacterLimit, upload
// fields carry format and dimension constraints. Enforcement of the constraints
// happens upstream at submission time, not here.
type CustomField struct {
	FieldType      string   `json:"fieldType" validate:"oneof=text upload"`
	Label          string   `json:"label" validate:"required"`
	CharacterLimit *int     `json:"characterLimit,omitempty"`
	AllowedFormats []string `json:"allowedFormats,omitempty"`
	MaxWidth       *int     `json:"maxWidth,omitempty"`
	MaxHeight      *int     `json:"maxHeight,omitempty"`
	MaxSizeKB      *int     `json:"maxSizeKB,omitempty"`
}

// Product is an ad placement type sold through publishers. Inactive or deleted
// products cannot enter new proposals; historical line items keep referencing
// them.
type Product struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductName  string         `gorm:"uniqueIndex;type:varchar(200);not null" json:"productName" validate:"required,max=200"`
	Status       bool           `gorm:"default:true;index" json:"status"`
	CustomFields datatypes.JSON `gorm:"type:json" json:"customFields"`
	IsDeleted    bool           `gorm:"default:false;index" json:"isDeleted"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Fields decodes the custom field definitions.
func (p *Product) Fields() ([]CustomField, error) {
	if len(p.CustomFields) == 0 {
		return nil, nil
	}
	var fields []CustomField
	if err := json.Unmarshal(p.CustomFields, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// SetFields encodes the custom field definitions.
func (p *Product) SetFields(fields []CustomField) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	p.CustomFields = datatypes.JSON(raw)
	return nil
}

// SellableProducts scopes a query to active, non-deleted products.
func SellableProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ? AND status = ?", false, true)
}
