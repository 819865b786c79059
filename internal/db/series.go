package db

// SeriesAssignment links an entry into a named series at a caller-assigned
// position. Positions order the series but need not be contiguous or unique.
type SeriesAssignment struct {
	ID       uint   `gorm:"primaryKey"`
	EntryID  int64  `gorm:"index;not null"`
	Series   string `gorm:"index;not null"`
	Position int    `gorm:"not null"`
}
