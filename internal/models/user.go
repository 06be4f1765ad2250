package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleHost, RoleAdmin:
		return true
	}
	return false
}

// CanManageListings reports whether the role may create or edit properties.
func (r Role) CanManageListings() bool {
	return r == RoleHost || r == RoleAdmin
}

type User struct {
	gorm.Model
	Username     string `json:"username" gorm:"column:username;unique;not null"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-"` // In-memory staging field, HashPassword writes PasswordHash
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	FullName     string `json:"fullName" gorm:"column:full_name"`
	Phone        string `json:"phone" gorm:"column:phone"`
	Role         Role   `json:"role" gorm:"column:role;not null;default:guest"`
	IsActive     bool   `json:"isActive" gorm:"column:is_active;default:true"`
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
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
