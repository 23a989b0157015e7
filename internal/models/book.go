package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalog entry and the unit of inventory.
type Book struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title         string          `json:"title" gorm:"type:varchar(200);index;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	ISBN          string          `json:"isbn" gorm:"uniqueIndex;type:varchar(13);not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock         int             `json:"stock" gorm:"not null;default:0"` // Never negative
	CoverImage    string          `json:"cover_image,omitempty"`
	PublishedDate *time.Time      `json:"published_date,omitempty"`
	AuthorID      string          `json:"author_id" gorm:"type:varchar(36);index;not null"`
	IsDeleted     bool            `json:"is_deleted" gorm:"index;not null;default:false"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Author writes books. Deletion is soft, like Book.
type Author struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Bio         string     `json:"bio,omitempty" gorm:"type:text"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Nationality string     `json:"nationality,omitempty" gorm:"type:varchar(100)"`
	Photo       string     `json:"photo,omitempty"`
	IsDeleted   bool       `json:"is_deleted" gorm:"index;not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
