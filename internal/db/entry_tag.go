package db

// EntryTag 定义了条目与标签的关联
type EntryTag struct {
	ID      uint   `gorm:"primaryKey"`
	EntryID int64  `gorm:"index;not null"`
	Tag     string `gorm:"index;not null"`
}
