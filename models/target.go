package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Target is a sales goal for one customer over a human-entered period label
// ("Q1", "07,08,09", month names). The achievement calculator parses the
// label into a concrete date range at query time.
type Target struct {
	ID           int            `gorm:"primary_key" json:"id"`
	AgencyId     string         `gorm:"index;size:36;not null" json:"agency_id"`
	CustomerName string         `gorm:"index;size:255;not null" json:"customer_name"`
	Year         int            `gorm:"not null" json:"year"`
	MonthsSpec   string         `gorm:"size:100" json:"months_spec"`
	Details      []TargetDetail `gorm:"foreignKey:TargetId" json:"details"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetTargetById(ctx context.Context, agencyId string, targetId int) (*Target, error) {
	db := config.GetDB()
	if db == nil {
		return nil, ErrDBNotInitialized
	}
	var target Target
	err := db.WithContext(ctx).Preload("Details").
		Where("id = ? AND agency_id = ?", targetId, agencyId).
		Take(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &target, nil
}

type TargetDetail struct {
	ID       int             `gorm:"primary_key" json:"id"`
	TargetId int             `gorm:"index;not null" json:"target_id"`
	Category string          `gorm:"size:100;not null" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}
