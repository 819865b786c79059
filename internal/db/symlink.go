package db

// Symlink maps a human readable slug to an entry, scoped by kind.
// Kind is either "normal" or "meta"; an entry holds at most one link per kind.
type Symlink struct {
	ID      uint   `gorm:"primaryKey"`
	EntryID int64  `gorm:"uniqueIndex:idx_symlinks_entry_kind;not null"`
	Kind    string `gorm:"uniqueIndex:idx_symlinks_entry_kind;index:idx_symlinks_kind_link;not null"`
	Link    string `gorm:"index:idx_symlinks_kind_link;not null"`
}
