package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// LeaderboardRepo реализует repository.LeaderboardRepository.
// Ранг считается оконной функцией RANK() (1, 1, 3), порядок строк - rank, user_id.
type LeaderboardRepo struct {
	db *gorm.DB
}

// NewLeaderboardRepo создает новый репозиторий рейтингов
func NewLeaderboardRepo(db *gorm.DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

type leaderboardRow struct {
	UserID       uint
	DisplayName  string
	Level        int
	Value        float64
	AttemptCount int64
	Rnk          int
}

func (row leaderboardRow) toEntry() entity.LeaderboardEntry {
	return entity.LeaderboardEntry{
		Rank:         row.Rnk,
		UserID:       row.UserID,
		DisplayName:  row.DisplayName,
		Level:        row.Level,
		Value:        row.Value,
		AttemptCount: row.AttemptCount,
	}
}

// Top возвращает первые f.Limit строк рейтинга
func (r *LeaderboardRepo) Top(ctx context.Context, f repository.LeaderboardFilter) ([]entity.LeaderboardEntry, error) {
	ranked, args, err := rankedQuery(f)
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	query := "SELECT * FROM (" + ranked + ") r ORDER BY r.rnk ASC, r.user_id ASC LIMIT ?"
	if err := r.db.WithContext(ctx).Raw(query, append(args, f.Limit)...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("leaderboard %s: %w", f.Board, err)
	}

	entries := make([]entity.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

// UserEntry ищет пользователя в том же ранжированном наборе
func (r *LeaderboardRepo) UserEntry(ctx context.Context, f repository.LeaderboardFilter, userID uint) (*entity.LeaderboardEntry, error) {
	ranked, args, err := rankedQuery(f)
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	query := "SELECT * FROM (" + ranked + ") r WHERE r.user_id = ?"
	if err := r.db.WithContext(ctx).Raw(query, append(args, userID)...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("leaderboard %s for user #%d: %w", f.Board, userID, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	entry := rows[0].toEntry()
	return &entry, nil
}

// rankedQuery строит подзапрос (user_id, display_name, level, value, attempt_count, rnk).
// Период ограничивает попытки по completed_at до агрегации.
func rankedQuery(f repository.LeaderboardFilter) (string, []interface{}, error) {
	var (
		base string
		args []interface{}
	)

	periodCond := ""
	if f.Since != nil {
		periodCond = " AND a.completed_at >= ?"
	}
	minAttempts := f.MinAttempts
	if minAttempts < 1 {
		minAttempts = 1
	}

	switch f.Board {
	case entity.BoardXP:
		if f.Since == nil {
			base = `SELECT p.user_id, p.display_name, p.level,
				CAST(p.xp AS DOUBLE PRECISION) AS value,
				p.total_attempts_taken AS attempt_count
				FROM profiles p`
		} else {
			base = `SELECT p.user_id, p.display_name, p.level,
				CAST(SUM(a.xp_earned) AS DOUBLE PRECISION) AS value,
				COUNT(*) AS attempt_count
				FROM attempts a JOIN profiles p ON p.user_id = a.user_id
				WHERE 1 = 1` + periodCond + `
				GROUP BY p.user_id, p.display_name, p.level`
			args = append(args, *f.Since)
		}

	case entity.BoardQuizCount:
		base = `SELECT p.user_id, p.display_name, p.level,
			CAST(COUNT(*) AS DOUBLE PRECISION) AS value,
			COUNT(*) AS attempt_count
			FROM attempts a JOIN profiles p ON p.user_id = a.user_id
			WHERE 1 = 1` + periodCond + `
			GROUP BY p.user_id, p.display_name, p.level`
		if f.Since != nil {
			args = append(args, *f.Since)
		}

	case entity.BoardAccuracy:
		base = `SELECT p.user_id, p.display_name, p.level,
			CAST(AVG(a.score_percentage) AS DOUBLE PRECISION) AS value,
			COUNT(*) AS attempt_count
			FROM attempts a JOIN profiles p ON p.user_id = a.user_id
			WHERE 1 = 1` + periodCond + `
			GROUP BY p.user_id, p.display_name, p.level
			HAVING COUNT(*) >= ?`
		if f.Since != nil {
			args = append(args, *f.Since)
		}
		args = append(args, minAttempts)

	case entity.BoardExam:
		if f.ExamType == "" {
			return "", nil, fmt.Errorf("%w: exam board requires exam_type", apperrors.ErrInvalidLeaderboard)
		}
		base = `SELECT p.user_id, p.display_name, p.level,
			CAST(AVG(a.score_percentage) AS DOUBLE PRECISION) AS value,
			COUNT(*) AS attempt_count
			FROM attempts a JOIN profiles p ON p.user_id = a.user_id
			WHERE a.exam_type = ?` + periodCond + `
			GROUP BY p.user_id, p.display_name, p.level
			HAVING COUNT(*) >= ?`
		args = append(args, f.ExamType)
		if f.Since != nil {
			args = append(args, *f.Since)
		}
		args = append(args, minAttempts)

	case entity.BoardStreak:
		// серия - состояние профиля, период к ней не применяется
		base = `SELECT p.user_id, p.display_name, p.level,
			CAST(p.study_streak_current AS DOUBLE PRECISION) AS value,
			p.total_attempts_taken AS attempt_count
			FROM profiles p
			WHERE p.study_streak_current > 0`

	default:
		return "", nil, fmt.Errorf("%w: unknown board %q", apperrors.ErrInvalidLeaderboard, f.Board)
	}

	ranked := `SELECT b.user_id, b.display_name, b.level, b.value, b.attempt_count,
		RANK() OVER (ORDER BY b.value DESC) AS rnk
		FROM (` + base + `) b`
	return ranked, args, nil
}
