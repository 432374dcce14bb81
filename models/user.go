package models

import "time"

// User is a SidesHub member. The ID is the identity provider's subject and is
// never generated locally. Email is private and never serialized with the
// user; it is only returned to its owner.
type User struct {
	ID              string    `json:"id" db:"id" gorm:"type:varchar(191);primaryKey;not null"`
	Email           *string   `json:"-" db:"email" gorm:"type:text;index:idx_users_email"`
	FirstName       *string   `json:"firstName,omitempty" db:"first_name" gorm:"type:text"`
	LastName        *string   `json:"lastName,omitempty" db:"last_name" gorm:"type:text"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty" db:"profile_image_url" gorm:"column:profile_image_url;type:text"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

