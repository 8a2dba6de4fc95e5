package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestUserService_Create(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewUserService(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	user, err := svc.Create(ctx, &types.CreateUserRequest{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "Sup3rSecret!",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, user.AccountCreated, user.AccountUpdated)
	assert.NotEqual(t, "Sup3rSecret!", user.PasswordHash)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Sup3rSecret!")))

	_, err = svc.Create(ctx, &types.CreateUserRequest{Email: "jane@example.com", Password: "An0ther!pass"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err), "duplicate email is a validation error")
}

func TestUserService_CreateConcurrentDuplicate(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewUserService(db, bcrypt.MinCost, nil)

	// Another sign-up for the same email lands between the existence check
	// and the insert.
	raced := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		raced = true
		testhelpers.CreateTestUser(t, db, "race@example.com")
	}))

	_, err := svc.Create(context.Background(), &types.CreateUserRequest{
		Email:     "race@example.com",
		FirstName: "Late",
		LastName:  "Comer",
		Password:  "Sup3rSecret!",
	})
	require.True(t, raced)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err), "unique violation is a validation error, got %v", err)
	assert.Equal(t, 400, apperr.StatusCode(err))

	var count int64
	db.Model(&models.User{}).Where("email = ?", "race@example.com").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUserService_Get(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewUserService(db, bcrypt.MinCost, nil)
	user := testhelpers.CreateTestUser(t, db, "get@example.com")

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_Update(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewUserService(db, bcrypt.MinCost, nil)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "update@example.com")

	req, err := types.ParseUpdateUserRequest([]byte(`{"firstname": "Renamed", "password": "newpass123"}`))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, "User", updated.LastName)
	assert.Equal(t, user.Email, updated.Email)
	assert.False(t, updated.AccountUpdated.Before(user.AccountUpdated))

	_, err = svc.Authenticate(ctx, user.Email, testhelpers.TestPassword)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "old password no longer works")
	_, err = svc.Authenticate(ctx, user.Email, "newpass123")
	assert.NoError(t, err)

	_, err = svc.Update(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_Authenticate(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewUserService(db, bcrypt.MinCost, nil)
	user := testhelpers.CreateTestUser(t, db, "auth@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", user.Email, testhelpers.TestPassword, false},
		{"wrong password", user.Email, "nope", true},
		{"unknown email", "ghost@example.com", testhelpers.TestPassword, true},
		{"empty email", "", testhelpers.TestPassword, true},
		{"empty password", user.Email, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}
