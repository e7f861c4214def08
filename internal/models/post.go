package models

import (
	"time"
)

// excerptLength is the number of runes shown when a post is printed.
const excerptLength = 15

type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"not null;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id"` // Nullable, posts may live outside any group
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image    string    `gorm:"size:255" json:"image"` // storage path, e.g. posts/cat.gif

	// 非数据库字段，列表页批量填充
	CommentCount int `gorm:"-" json:"comment_count"`
}

// Excerpt returns the leading part of the text used in listings and logs.
func (p Post) Excerpt() string {
	runes := []rune(p.Text)
	if len(runes) <= excerptLength {
		return p.Text
	}
	return string(runes[:excerptLength])
}

func (p Post) String() string {
	return p.Excerpt()
}
