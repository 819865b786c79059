package service

import (
	"math/rand"

	"github.com/rotalog/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RotationService maintains the dense 1..N rank ordering and performs the
// periodic promotion of the last-ranked entry to the front.
type RotationService struct {
	db  *gorm.DB
	rss *RssService
	log zerolog.Logger
}

// NewRotationService creates a RotationService instance.
func NewRotationService(gdb *gorm.DB, rss *RssService, log zerolog.Logger) *RotationService {
	return &RotationService{db: gdb, rss: rss, log: log}
}

// Rotate promotes tail entries to rank 1 until a visible one surfaces; that
// entry is also enqueued into the recency feed. Invisible entries cycle to
// the front silently. With no visible entries at all the call is a no-op.
func (s *RotationService) Rotate() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var visible int64
		if err := tx.Model(&db.Entry{}).Where("invisible = ?", false).Count(&visible).Error; err != nil {
			return err
		}
		if visible == 0 {
			s.log.Info().Msg("no visible entries")
			return nil
		}

		for {
			invisible, err := s.rotateOnce(tx)
			if err != nil {
				return err
			}
			if !invisible {
				return nil
			}
		}
	})
}

// rotateOnce shifts every rank up by one and moves the previously last entry
// to rank 1. Reports whether the promoted entry was invisible.
func (s *RotationService) rotateOnce(tx *gorm.DB) (bool, error) {
	if err := slideRanks(tx, 1); err != nil {
		return false, err
	}

	var row db.Entry
	if err := tx.Select("id", "invisible").Order("rank desc").First(&row).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&db.Entry{}).Where("id = ?", row.ID).Update("rank", 1).Error; err != nil {
		return false, err
	}

	if row.Invisible {
		s.log.Info().Int64("entry", row.ID).Msg("promoted invisible entry")
		return true, nil
	}

	s.log.Info().Int64("entry", row.ID).Msg("promoted entry")
	if err := s.rss.Enqueue(tx, row.ID); err != nil {
		return false, err
	}
	return false, nil
}

// generateRank picks a uniformly random insertion rank and opens a slot for
// it, so new entries land at arbitrary positions in the ordering.
func generateRank(tx *gorm.DB) (int, error) {
	var maxRank int
	if err := tx.Model(&db.Entry{}).Select("COALESCE(MAX(rank), 0)").Scan(&maxRank).Error; err != nil {
		return 0, err
	}
	if maxRank == 0 {
		return 1, nil
	}
	rank := rand.Intn(maxRank) + 1
	if err := slideRanks(tx, rank); err != nil {
		return 0, err
	}
	return rank, nil
}

// slideRanks shifts every rank >= from up by one. Rows are updated one at a
// time in descending rank order so the unique index never sees a collision.
func slideRanks(tx *gorm.DB, from int) error {
	var ids []int64
	if err := tx.Model(&db.Entry{}).
		Where("rank >= ?", from).
		Order("rank desc").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := tx.Model(&db.Entry{}).
			Where("id = ?", id).
			Update("rank", gorm.Expr("rank + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}
