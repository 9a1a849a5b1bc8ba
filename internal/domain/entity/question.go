package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Допустимые буквы вариантов ответа
const (
	AnswerA = "A"
	AnswerB = "B"
	AnswerC = "C"
	AnswerD = "D"
)

// AnswerLetters - все варианты в порядке отображения
var AnswerLetters = []string{AnswerA, AnswerB, AnswerC, AnswerD}

// IsValidAnswerLetter проверяет, что ответ - одна из букв A-D
func IsValidAnswerLetter(letter string) bool {
	switch letter {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	}
	return false
}

// NormalizeAnswerLetter приводит ответ к верхнему регистру без пробелов
func NormalizeAnswerLetter(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// IDArray - упорядоченный список идентификаторов, хранится как JSON-массив
type IDArray []uint

// Scan реализует интерфейс sql.Scanner для IDArray.
// Postgres отдаёт jsonb как []byte, SQLite - как string.
func (a *IDArray) Scan(value interface{}) error {
	if value == nil {
		*a = IDArray{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal id array: unexpected type %T", value)
	}

	if len(raw) == 0 {
		*a = IDArray{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

// Value реализует интерфейс driver.Valuer для IDArray
func (a IDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Question - вопрос из банка вопросов. Банк ведётся внешним сервисом,
// здесь таблица только читается.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ExamType      string    `gorm:"size:50;not null;index:idx_questions_exam_domain,priority:1" json:"exam_type"`
	Domain        string    `gorm:"size:100;not null;default:'';index:idx_questions_exam_domain,priority:2" json:"domain"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	OptionA       string    `gorm:"type:text;not null" json:"option_a"`
	OptionB       string    `gorm:"type:text;not null" json:"option_b"`
	OptionC       string    `gorm:"type:text;not null" json:"option_c"`
	OptionD       string    `gorm:"type:text;not null" json:"option_d"`
	ExplanationA  string    `gorm:"type:text;not null;default:''" json:"explanation_a"`
	ExplanationB  string    `gorm:"type:text;not null;default:''" json:"explanation_b"`
	ExplanationC  string    `gorm:"type:text;not null;default:''" json:"explanation_c"`
	ExplanationD  string    `gorm:"type:text;not null;default:''" json:"explanation_d"`
	CorrectAnswer string    `gorm:"size:1;not null" json:"-"` // Скрыто от клиента до ответа
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, совпадает ли ответ с правильным
func (q *Question) IsCorrect(letter string) bool {
	return NormalizeAnswerLetter(letter) == q.CorrectAnswer
}

// OptionText возвращает текст варианта по букве
func (q *Question) OptionText(letter string) string {
	switch letter {
	case AnswerA:
		return q.OptionA
	case AnswerB:
		return q.OptionB
	case AnswerC:
		return q.OptionC
	case AnswerD:
		return q.OptionD
	}
	return ""
}

// Explanation возвращает пояснение к варианту по букве
func (q *Question) Explanation(letter string) string {
	switch letter {
	case AnswerA:
		return q.ExplanationA
	case AnswerB:
		return q.ExplanationB
	case AnswerC:
		return q.ExplanationC
	case AnswerD:
		return q.ExplanationD
	}
	return ""
}
