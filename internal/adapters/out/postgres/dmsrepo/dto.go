// Package dmsrepo persists the company to DMS client code mappings and the
// record of DMS documents already applied to orders.
package dmsrepo

import (
	"time"

	"ordering/internal/core/domain/model/dms"
	"ordering/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// MappingDTO is a row of company_dms_mappings.
type MappingDTO struct {
	CompanyID  uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey"`
	ClientCode string    `gorm:"column:client_code;primaryKey"`
	Active     bool      `gorm:"column:active"`
}

func (MappingDTO) TableName() string {
	return "company_dms_mappings"
}

// MatchDTO is a row of dms_document_matches.
type MatchDTO struct {
	ExternalRef string    `gorm:"column:external_ref;primaryKey"`
	Kind        string    `gorm:"column:kind"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid"`
	MatchedAt   time.Time `gorm:"column:matched_at"`
}

func (MatchDTO) TableName() string {
	return "dms_document_matches"
}

func mappingToDomain(dto MappingDTO) (dms.Mapping, error) {
	companyID, err := kernel.UUIDFromBytes(dto.CompanyID[:])
	if err != nil {
		return dms.Mapping{}, err
	}
	return dms.Mapping{
		CompanyID:  companyID,
		ClientCode: dto.ClientCode,
		Active:     dto.Active,
	}, nil
}

func matchFromDomain(record dms.MatchRecord) MatchDTO {
	return MatchDTO{
		ExternalRef: record.ExternalRef,
		Kind:        record.Kind.String(),
		OrderID:     record.OrderID.Bytes(),
		MatchedAt:   record.MatchedAt,
	}
}
