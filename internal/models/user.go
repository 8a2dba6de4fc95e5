package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can author recipes. Email never changes after creation.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName      string    `gorm:"column:firstname" json:"firstname"`
	LastName       string    `gorm:"column:lastname" json:"lastname"`
	PasswordHash   string    `gorm:"column:password;not null" json:"-"`
	AccountCreated time.Time `gorm:"column:account_created;not null" json:"account_created"`
	AccountUpdated time.Time `gorm:"column:account_updated;not null" json:"account_updated"`
}

func (User) TableName() string { return "users" }

// Now is the timestamp written by every store mutation. Postgres keeps
// microseconds, so values are truncated to what will be read back.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
