package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralCode is owned by exactly one user; owner_id carries a unique index
// so a user can never hold two codes.
type ReferralCode struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string     `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	OwnerID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"owner"`
	ExpirationDate *time.Time `json:"expiration_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReferralCode) TableName() string { return "referral_codes" }

func (rc *ReferralCode) BeforeCreate(*gorm.DB) error {
	if rc.ID == uuid.Nil {
		rc.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the code has an expiration date before now.
// Codes without an expiration date never expire.
func (rc *ReferralCode) IsExpired(now time.Time) bool {
	return rc.ExpirationDate != nil && rc.ExpirationDate.Before(now)
}
