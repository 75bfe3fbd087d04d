package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Referral records that RefereeID registered with a code owned by ReferrerID.
// The code itself may later be deleted; the referral row survives.
type Referral struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReferralCodeID uuid.UUID `gorm:"type:uuid;not null;index" json:"referral_code_id"`
	Code           string    `gorm:"type:varchar(10);not null" json:"code"`
	ReferrerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"referrer_id"`
	RefereeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"referee_id"`
	CreatedAt      time.Time `json:"created_at"`

	Referee User `gorm:"foreignKey:RefereeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Referral) TableName() string { return "referrals" }

func (r *Referral) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
