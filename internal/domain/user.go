package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserAddress struct {
	Type      string `bson:"type" json:"type"` // billing or shipping
	Address   `bson:",inline"`
	IsDefault bool `bson:"is_default" json:"isDefault"`
}

type User struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	FirstName    string        `bson:"first_name" json:"firstName"`
	LastName     string        `bson:"last_name" json:"lastName"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	Role         Role          `bson:"role" json:"role"`
	Addresses    []UserAddress `bson:"addresses,omitempty" json:"addresses,omitempty"`
	PhoneNumber  string        `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	LastLogin    *time.Time    `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
