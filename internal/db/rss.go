package db

// RssEntry 记录最近被推广条目在订阅窗口中的位置，feed_position 在 1..10 内稠密且唯一。
type RssEntry struct {
	EntryID      int64 `gorm:"primaryKey;autoIncrement:false"`
	FeedPosition int   `gorm:"uniqueIndex;not null"`
}
