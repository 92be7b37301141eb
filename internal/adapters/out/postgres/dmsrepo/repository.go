package dmsrepo

import (
	"context"
	"strings"

	"ordering/internal/core/domain/model/dms"
	"ordering/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDMSRepository implements DMSRepository using GORM.
type GormDMSRepository struct {
	db *gorm.DB
}

func NewGormDMSRepository(db *gorm.DB) *GormDMSRepository {
	return &GormDMSRepository{db: db}
}

// ActiveMappings returns the active mappings ordered by client code.
func (r *GormDMSRepository) ActiveMappings(ctx context.Context) ([]dms.Mapping, error) {
	var dtos []MappingDTO
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("client_code, company_id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	mappings := make([]dms.Mapping, 0, len(dtos))
	for _, dto := range dtos {
		mapping, err := mappingToDomain(dto)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, nil
}

// SaveMapping inserts or reactivates a mapping.
func (r *GormDMSRepository) SaveMapping(ctx context.Context, mapping dms.Mapping) error {
	if err := mapping.CompanyID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(mapping.ClientCode) == "" {
		return errs.NewValueIsRequiredError("clientCode")
	}

	dto := MappingDTO{
		CompanyID:  mapping.CompanyID.Bytes(),
		ClientCode: mapping.ClientCode,
		Active:     mapping.Active,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "client_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"active"}),
		}).
		Create(&dto).Error
}

func (r *GormDMSRepository) MatchedRefs(ctx context.Context, externalRefs []string) (map[string]bool, error) {
	matched := make(map[string]bool)
	if len(externalRefs) == 0 {
		return matched, nil
	}

	var refs []string
	if err := r.db.WithContext(ctx).
		Model(&MatchDTO{}).
		Where("external_ref IN ?", externalRefs).
		Pluck("external_ref", &refs).Error; err != nil {
		return nil, err
	}

	for _, ref := range refs {
		matched[ref] = true
	}
	return matched, nil
}

// RecordMatch inserts the match unless the externalRef is already taken.
// A conflict does not abort the surrounding transaction.
func (r *GormDMSRepository) RecordMatch(ctx context.Context, record dms.MatchRecord) error {
	if strings.TrimSpace(record.ExternalRef) == "" {
		return errs.NewValueIsRequiredError("externalRef")
	}
	if err := record.OrderID.Validate(); err != nil {
		return err
	}

	dto := matchFromDomain(record)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dms.ErrDocumentAlreadyMatched
	}
	return nil
}
