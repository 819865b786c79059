package db

import "time"

// Entry 定义了条目模型。rank 在全部条目（含不可见条目）上构成 1..N 的稠密排序。
type Entry struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	Rank         int    `gorm:"uniqueIndex;not null"`
	Title        string `gorm:"not null"`
	Body         string `gorm:"type:text"`
	Teaser       string `gorm:"type:text"`
	Invisible    bool   `gorm:"not null;index"`
	RedirectURL  *string `gorm:"column:redirect_url"`
	MD5Signature string  `gorm:"column:md5_signature"`
	DatePosted   time.Time
}
