package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOwner
}

type User struct {
	gorm.Model          // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Name         string `gorm:"column:name;not null" json:"name"`
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password     string `gorm:"-" json:"-"` // Temporary field for password handling
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"column:role;not null;default:'user'" json:"role"`
	FCMToken     string `gorm:"column:fcm_token" json:"-"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	u.Password = ""
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
