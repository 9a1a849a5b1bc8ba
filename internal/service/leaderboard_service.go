package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// LeaderboardOptions - настройки рейтингов
type LeaderboardOptions struct {
	AccuracyMinAttempts int
	ExamMinAttempts     int
	DefaultLimit        int
	MaxLimit            int
	CacheTTL            time.Duration
	WarmExamTypes       []string
}

// LeaderboardQuery - запрос рейтинга
type LeaderboardQuery struct {
	Board       entity.LeaderboardBoard
	Period      entity.LeaderboardPeriod
	ExamType    string
	Limit       int
	UserID      uint
	IncludeUser bool
}

// LeaderboardResult - верх рейтинга и, по запросу, позиция пользователя
type LeaderboardResult struct {
	Board    entity.LeaderboardBoard   `json:"board"`
	Period   entity.LeaderboardPeriod  `json:"period"`
	ExamType string                    `json:"exam_type,omitempty"`
	Entries  []entity.LeaderboardEntry `json:"entries"`
	Me       *entity.LeaderboardEntry  `json:"me,omitempty"`
}

// cachedBoard - окно рейтинга максимальной длины в кеше
type cachedBoard struct {
	Entries     []entity.LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// LeaderboardService строит рейтинги только чтением. Верхние окна кешируются в Redis.
type LeaderboardService struct {
	repo   repository.LeaderboardRepository
	cache  repository.CacheRepository
	opts   LeaderboardOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaderboardService создает сервис рейтингов. cache может быть nil.
func NewLeaderboardService(repo repository.LeaderboardRepository, cache repository.CacheRepository, opts LeaderboardOptions, logger *zap.Logger) *LeaderboardService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = 100
	}
	if opts.AccuracyMinAttempts <= 0 {
		opts.AccuracyMinAttempts = 1
	}
	if opts.ExamMinAttempts <= 0 {
		opts.ExamMinAttempts = 1
	}
	return &LeaderboardService{
		repo:   repo,
		cache:  cache,
		opts:   opts,
		logger: logger.Named("LeaderboardService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени
func (s *LeaderboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Get возвращает рейтинг
func (s *LeaderboardService) Get(ctx context.Context, q LeaderboardQuery) (*LeaderboardResult, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	window, err := s.window(ctx, q)
	if err != nil {
		return nil, err
	}
	entries := window
	if len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}

	result := &LeaderboardResult{Board: q.Board, Period: q.Period, ExamType: q.ExamType, Entries: entries}
	if q.IncludeUser && q.UserID != 0 {
		me, err := s.repo.UserEntry(ctx, s.filter(q, q.Limit), q.UserID)
		switch {
		case err == nil:
			result.Me = me
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}
	return result, nil
}

// Warm пересчитывает закешированные окна всех рейтингов
func (s *LeaderboardService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	periods := []entity.LeaderboardPeriod{entity.PeriodAllTime, entity.PeriodMonthly, entity.PeriodWeekly}

	var errs []error
	warmed := 0
	for _, board := range entity.AllBoards {
		examTypes := []string{""}
		if board == entity.BoardExam {
			examTypes = s.opts.WarmExamTypes
		}
		for _, period := range periods {
			if board == entity.BoardStreak && period != entity.PeriodAllTime {
				continue
			}
			for _, exam := range examTypes {
				q := LeaderboardQuery{Board: board, Period: period, ExamType: exam, Limit: s.opts.MaxLimit}
				if _, err := s.refresh(ctx, q); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", cacheKey(q), err))
					continue
				}
				warmed++
			}
		}
	}

	s.logger.Info("leaderboard cache warmed", zap.Int("boards", warmed), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// Export пишет рейтинг (до MaxLimit строк, без кеша) в XLSX
func (s *LeaderboardService) Export(ctx context.Context, q LeaderboardQuery, w io.Writer) error {
	if q.Limit <= 0 {
		q.Limit = s.opts.MaxLimit
	}
	q, err := s.normalize(q)
	if err != nil {
		return err
	}
	entries, err := s.repo.Top(ctx, s.filter(q, q.Limit))
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []interface{}{"Место", "Пользователь", "ID", "Уровень", valueHeader(q.Board), "Попыток"}); err != nil {
		return err
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{e.Rank, sanitizeForExcel(e.DisplayName), e.UserID, e.Level, e.Value, e.AttemptCount}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func (s *LeaderboardService) normalize(q LeaderboardQuery) (LeaderboardQuery, error) {
	if !q.Board.Valid() {
		return q, fmt.Errorf("%w: unknown board %q", apperrors.ErrInvalidLeaderboard, q.Board)
	}
	if q.Period == "" {
		q.Period = entity.PeriodAllTime
	}
	if !q.Period.Valid() {
		return q, fmt.Errorf("%w: unknown period %q", apperrors.ErrInvalidLeaderboard, q.Period)
	}
	q.ExamType = strings.TrimSpace(q.ExamType)
	if q.Board == entity.BoardExam && q.ExamType == "" {
		return q, fmt.Errorf("%w: exam board requires exam_type", apperrors.ErrInvalidLeaderboard)
	}
	if q.Board != entity.BoardExam {
		q.ExamType = ""
	}
	if q.Board == entity.BoardStreak {
		q.Period = entity.PeriodAllTime
	}
	if q.Limit <= 0 {
		q.Limit = s.opts.DefaultLimit
	}
	if q.Limit > s.opts.MaxLimit {
		q.Limit = s.opts.MaxLimit
	}
	return q, nil
}

func (s *LeaderboardService) filter(q LeaderboardQuery, limit int) repository.LeaderboardFilter {
	f := repository.LeaderboardFilter{
		Board:    q.Board,
		Since:    q.Period.Since(s.now()),
		ExamType: q.ExamType,
		Limit:    limit,
	}
	switch q.Board {
	case entity.BoardAccuracy:
		f.MinAttempts = s.opts.AccuracyMinAttempts
	case entity.BoardExam:
		f.MinAttempts = s.opts.ExamMinAttempts
	}
	return f
}

// window возвращает окно длиной MaxLimit из кеша или из базы
func (s *LeaderboardService) window(ctx context.Context, q LeaderboardQuery) ([]entity.LeaderboardEntry, error) {
	if s.cache != nil {
		var cached cachedBoard
		err := s.cache.GetJSON(ctx, cacheKey(q), &cached)
		if err == nil {
			return cached.Entries, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("leaderboard cache read failed", zap.String("key", cacheKey(q)), zap.Error(err))
		}
	}
	return s.refresh(ctx, q)
}

func (s *LeaderboardService) refresh(ctx context.Context, q LeaderboardQuery) ([]entity.LeaderboardEntry, error) {
	entries, err := s.repo.Top(ctx, s.filter(q, s.opts.MaxLimit))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entity.LeaderboardEntry{}
	}
	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, cacheKey(q), cachedBoard{Entries: entries, GeneratedAt: s.now()}, s.opts.CacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.String("key", cacheKey(q)), zap.Error(err))
		}
	}
	return entries, nil
}

func cacheKey(q LeaderboardQuery) string {
	return fmt.Sprintf("%s:%s:%s", q.Board, q.Period, q.ExamType)
}

func valueHeader(board entity.LeaderboardBoard) string {
	switch board {
	case entity.BoardXP:
		return "Опыт"
	case entity.BoardQuizCount:
		return "Тестов"
	case entity.BoardStreak:
		return "Серия (дней)"
	}
	return "Средний результат (%)"
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
