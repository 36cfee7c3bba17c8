package model

import (
	"time"

	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table. The id is a store-generated identity column.
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"type:varchar(255)"`
	LastName  string    `gorm:"type:varchar(255)"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	Password  string    `gorm:"type:varchar(255);not null"`
	Role      string    `gorm:"type:varchar(16);not null;default:USER"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// AutoMigrate creates or alters every table owned by the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}
