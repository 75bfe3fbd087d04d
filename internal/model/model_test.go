package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReferralCodeIsExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&ReferralCode{}).IsExpired(now))
	assert.True(t, (&ReferralCode{ExpirationDate: &past}).IsExpired(now))
	assert.False(t, (&ReferralCode{ExpirationDate: &future}).IsExpired(now))
}

func TestAutoMigrateEnforcesOneCodePerOwner(t *testing.T) {
	dsn := fmt.Sprintf("file:model_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	owner := User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	assert.NotEqual(t, "", owner.ID.String())

	require.NoError(t, db.Create(&ReferralCode{Code: "ABC123", OwnerID: owner.ID}).Error)
	assert.Error(t, db.Create(&ReferralCode{Code: "XYZ789", OwnerID: owner.ID}).Error)

	dup := User{Username: "ALICE", Email: "other@example.com", PasswordHash: "x"}
	assert.Error(t, db.Create(&dup).Error)
}
