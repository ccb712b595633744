package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"gorm.io/gorm"
)

// Agency is the tenant. Most tables carry its id and are scoped by the
// agency guard plugin.
type Agency struct {
	ID          string    `gorm:"size:36;primary_key" json:"id"` // uuid
	Name        string    `gorm:"size:255;not null" json:"name"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"` // as registered with the external ERP
	Timezone    string    `gorm:"size:64" json:"timezone"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetAgencyById(ctx context.Context, agencyId string) (*Agency, error) {
	db := config.GetDB()
	if db == nil {
		return nil, ErrDBNotInitialized
	}
	var agency Agency
	if err := db.WithContext(ctx).Where("id = ?", agencyId).Take(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &agency, nil
}

func GetActiveAgencies(ctx context.Context) ([]Agency, error) {
	db := config.GetDB()
	if db == nil {
		return nil, ErrDBNotInitialized
	}
	var agencies []Agency
	if err := db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&agencies).Error; err != nil {
		return nil, err
	}
	return agencies, nil
}
