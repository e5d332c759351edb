package models

import (
	"github.com/google/uuid"
)

// CustomerModel is a read-only projection of the customers table. The table is
// owned by the partner context; billing only resolves references against it.
type CustomerModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code     string    `gorm:"type:varchar(50);not null"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Email    string    `gorm:"type:varchar(200)"`
	Phone    string    `gorm:"type:varchar(50)"`
	Status   string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}
