package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"referralhub/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, repo UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Status:       model.UserStatusActive,
	}
	require.NoError(t, repo.CreateWithReferral(context.Background(), user, nil))
	return user
}

func TestUserRepositoryUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, repo, "alice")

	got, err := repo.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	err = repo.CreateWithReferral(ctx, &model.User{Username: "Alice", Email: "a2@example.com", PasswordHash: "h"}, nil)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = repo.CreateWithReferral(ctx, &model.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "h"}, nil)
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryCreateWithReferral(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	codes := NewReferralCodeRepository(db)
	referrals := NewReferralRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	code := &model.ReferralCode{Code: "ABC123", OwnerID: alice.ID}
	require.NoError(t, codes.Create(ctx, code))

	bob := &model.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}
	referral := &model.Referral{ReferralCodeID: code.ID, Code: code.Code, ReferrerID: alice.ID}
	require.NoError(t, users.CreateWithReferral(ctx, bob, referral))
	assert.Equal(t, bob.ID, referral.RefereeID)

	list, err := referrals.ListByReferrer(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Referee.Username)
	assert.Equal(t, "ABC123", list[0].Code)
}

func TestUserRepositoryCreateWithReferralRollsBack(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	carol := createUser(t, users, "carol")
	existing := &model.Referral{ReferralCodeID: uuid.New(), Code: "X", ReferrerID: alice.ID, RefereeID: carol.ID}
	require.NoError(t, db.Create(existing).Error)

	// Reusing the primary key makes the referral insert fail after the user
	// row has been written.
	dave := &model.User{Username: "dave", Email: "dave@example.com", PasswordHash: "h"}
	err := users.CreateWithReferral(ctx, dave, &model.Referral{ID: existing.ID, ReferralCodeID: uuid.New(), Code: "X", ReferrerID: alice.ID})
	assert.Error(t, err)

	_, err = users.GetByUsername(ctx, "dave")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReferralCodeRepositoryCreate(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewReferralCodeRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	expires := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	code := &model.ReferralCode{Code: "ABC123", OwnerID: alice.ID, ExpirationDate: &expires}
	require.NoError(t, repo.Create(ctx, code))
	assert.NotEqual(t, uuid.Nil, code.ID)

	err := repo.Create(ctx, &model.ReferralCode{Code: "OTHER1", OwnerID: alice.ID})
	assert.ErrorIs(t, err, ErrOwnerHasReferralCode)

	err = repo.Create(ctx, &model.ReferralCode{Code: "ABC123", OwnerID: bob.ID})
	assert.ErrorIs(t, err, ErrReferralCodeTaken)

	got, err := repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.OwnerID)
	require.NotNil(t, got.ExpirationDate)
	assert.True(t, expires.Equal(*got.ExpirationDate))
}

func TestReferralCodeRepositoryUniqueIndexClassification(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, db.Create(&model.ReferralCode{Code: "ABC123", OwnerID: alice.ID}).Error)

	// Bypass the pre-check the way a concurrent insert would.
	err := db.Create(&model.ReferralCode{Code: "NEW1", OwnerID: alice.ID}).Error
	assert.ErrorIs(t, translateReferralCodeErr(err), ErrOwnerHasReferralCode)

	err = db.Create(&model.ReferralCode{Code: "ABC123", OwnerID: bob.ID}).Error
	assert.ErrorIs(t, translateReferralCodeErr(err), ErrReferralCodeTaken)
}

// With a single connection the attempts are serialized, so every loser is
// caught by the pre-check.
func TestReferralCodeRepositoryCreateFromManyGoroutines(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewReferralCodeRepository(db)
	alice := createUser(t, users, "alice")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(context.Background(), &model.ReferralCode{
				Code:    fmt.Sprintf("CODE%d", i),
				OwnerID: alice.ID,
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrOwnerHasReferralCode)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, db.Model(&model.ReferralCode{}).Where("owner_id = ?", alice.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReferralCodeRepositoryCreateLosesRaceAfterPreCheck(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewReferralCodeRepository(db)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	// rival, when set, is inserted inside the Create transaction after the
	// pre-check counts and before the row itself, as a concurrent writer would.
	var rival *model.ReferralCode
	var rivalErr error
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:rival_insert", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.ReferralCode); !ok || rival == nil {
			return
		}
		r := rival
		rival = nil
		now := time.Now()
		rivalErr = tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO referral_codes (id, code, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			uuid.New(), r.Code, r.OwnerID, now, now,
		).Error
	}))

	cases := []struct {
		name  string
		rival model.ReferralCode
		want  error
	}{
		{"same owner", model.ReferralCode{Code: "RIVAL1", OwnerID: alice.ID}, ErrOwnerHasReferralCode},
		{"same code", model.ReferralCode{Code: "ABC123", OwnerID: bob.ID}, ErrReferralCodeTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.rival
			rival = &r
			err := repo.Create(ctx, &model.ReferralCode{Code: "ABC123", OwnerID: alice.ID})
			require.NoError(t, rivalErr)
			assert.ErrorIs(t, err, tc.want)

			// The failed transaction takes the rival row with it.
			var count int64
			require.NoError(t, db.Model(&model.ReferralCode{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestReferralCodeRepositoryLookupUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewReferralCodeRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	aliceCode := &model.ReferralCode{Code: "ABC123", OwnerID: alice.ID}
	require.NoError(t, repo.Create(ctx, aliceCode))
	require.NoError(t, repo.Create(ctx, &model.ReferralCode{Code: "BOB1", OwnerID: bob.ID}))

	got, err := repo.GetByOwnerEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.Code)

	_, err = repo.GetByOwnerEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	aliceCode.Code = "BOB1"
	assert.ErrorIs(t, repo.Update(ctx, aliceCode), ErrReferralCodeTaken)

	aliceCode.Code = "NEW123"
	require.NoError(t, repo.Update(ctx, aliceCode))
	got, err = repo.GetByID(ctx, aliceCode.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEW123", got.Code)
	assert.Nil(t, got.ExpirationDate)

	require.NoError(t, repo.Delete(ctx, aliceCode.ID))
	_, err = repo.GetByID(ctx, aliceCode.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, aliceCode.ID), gorm.ErrRecordNotFound)
}
