package model

import "time"

// Post is an image post with a caption. Image holds the stored relative path and is nil
// when no attachment was uploaded.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Image     *string   `json:"image" gorm:"size:512"`
	Caption   string    `json:"caption" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"date_created" gorm:"column:date_created;autoCreateTime;index"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
