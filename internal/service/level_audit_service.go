package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

const defaultAuditBatch = 500

// LevelMismatch - профиль, у которого кешированный уровень расходится с опытом
type LevelMismatch struct {
	UserID   uint  `json:"user_id"`
	XP       int64 `json:"xp"`
	Stored   int   `json:"stored_level"`
	Computed int   `json:"computed_level"`
}

// LevelAuditReport - итог проверки уровней
type LevelAuditReport struct {
	Checked    int             `json:"checked"`
	Mismatches []LevelMismatch `json:"mismatches"`
	Repaired   int             `json:"repaired"`
}

// LevelAuditService сверяет кешированный уровень профилей с формулой уровней
type LevelAuditService struct {
	tx     repository.Transactor
	store  repository.Store
	logger *zap.Logger
}

func NewLevelAuditService(tx repository.Transactor, store repository.Store, logger *zap.Logger) *LevelAuditService {
	return &LevelAuditService{tx: tx, store: store, logger: logger.Named("LevelAuditService")}
}

// Audit обходит профили пачками. С repair=true расхождения исправляются на месте.
func (s *LevelAuditService) Audit(ctx context.Context, repair bool, batch int) (*LevelAuditReport, error) {
	if batch <= 0 {
		batch = defaultAuditBatch
	}
	report := &LevelAuditReport{Mismatches: []LevelMismatch{}}

	var after uint
	for {
		profiles, err := s.store.Profiles().ListAfter(ctx, after, batch)
		if err != nil {
			return report, fmt.Errorf("list profiles after %d: %w", after, err)
		}
		if len(profiles) == 0 {
			break
		}

		for _, p := range profiles {
			report.Checked++
			level, err := gamification.LevelFromXP(p.XP)
			if err != nil {
				return report, fmt.Errorf("profile %d: %w", p.UserID, err)
			}
			if level == p.Level {
				continue
			}

			report.Mismatches = append(report.Mismatches, LevelMismatch{UserID: p.UserID, XP: p.XP, Stored: p.Level, Computed: level})
			if !repair {
				continue
			}
			fixed, err := s.repair(ctx, p.UserID)
			if err != nil {
				return report, fmt.Errorf("repair level for user %d: %w", p.UserID, err)
			}
			if fixed {
				report.Repaired++
			}
		}

		after = profiles[len(profiles)-1].UserID
	}

	return report, nil
}

// repair пересчитывает уровень по опыту, прочитанному под блокировкой строки,
// а не по значению из пачки
func (s *LevelAuditService) repair(ctx context.Context, userID uint) (bool, error) {
	var fixed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		p, err := store.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		from := p.Level
		fixed, err = p.RecomputeLevel()
		if err != nil || !fixed {
			return err
		}
		if err := store.Profiles().UpdateLevel(ctx, userID, p.Level); err != nil {
			return err
		}
		s.logger.Info("level repaired",
			zap.Uint("user_id", userID), zap.Int64("xp", p.XP), zap.Int("from", from), zap.Int("to", p.Level))
		return nil
	})
	return fixed, err
}
