package gamification

import "time"

// StreakUpdate - новое состояние серии после активности
type StreakUpdate struct {
	Current      int
	Longest      int
	ActivityDate time.Time // полночь дня активности (UTC-дата в часовом поясе loc)
	Changed      bool
}

// NextStreak пересчитывает серию учебных дней.
// Вчера → +1, сегодня → без изменений, разрыв больше дня → 1.
// Даты сравниваются как календарные дни в часовом поясе loc.
func NextStreak(current, longest int, lastActivity *time.Time, now time.Time, loc *time.Location) StreakUpdate {
	if loc == nil {
		loc = time.UTC
	}
	today := CalendarDate(now, loc)
	upd := StreakUpdate{Current: current, Longest: longest, ActivityDate: today}

	if lastActivity == nil || lastActivity.IsZero() {
		upd.Current = 1
	} else {
		// lastActivity уже хранится как дата; повторная нормализация в UTC не меняет её
		last := CalendarDate(*lastActivity, time.UTC)
		switch days := DaysBetween(last, today); {
		case days == 0:
			if upd.Current < 1 {
				upd.Current = 1
			}
		case days == 1:
			upd.Current = current + 1
		case days > 1:
			upd.Current = 1
		default:
			// активность "из будущего" (сдвиг часов) - не трогаем серию
			upd.ActivityDate = last
		}
	}

	if upd.Current > upd.Longest {
		upd.Longest = upd.Current
	}
	upd.Changed = upd.Current != current || upd.Longest != longest
	return upd
}

// CalendarDate возвращает календарную дату момента t в поясе loc как полночь UTC
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween - число календарных дней от a до b (обе даты - полночь UTC)
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
