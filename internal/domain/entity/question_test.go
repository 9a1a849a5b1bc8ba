package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		ExamType:      "security_plus",
		Text:          "Which protocol encrypts web traffic?",
		OptionA:       "HTTP",
		OptionB:       "HTTPS",
		OptionC:       "FTP",
		OptionD:       "Telnet",
		CorrectAnswer: AnswerB,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("B"))
	assert.True(t, question.IsCorrect(" b "), "ответ нормализуется перед сравнением")
	assert.False(t, question.IsCorrect("A"))
	assert.False(t, question.IsCorrect(""))
}

func TestQuestion_OptionTextAndExplanation(t *testing.T) {
	question := &Question{
		OptionA: "one", OptionB: "two", OptionC: "three", OptionD: "four",
		ExplanationA: "ea", ExplanationD: "ed",
	}

	assert.Equal(t, "three", question.OptionText(AnswerC))
	assert.Equal(t, "ed", question.Explanation(AnswerD))
	assert.Equal(t, "", question.OptionText("E"))
	assert.Equal(t, "", question.Explanation("E"))
}

func TestIsValidAnswerLetter(t *testing.T) {
	for _, l := range AnswerLetters {
		assert.True(t, IsValidAnswerLetter(l))
	}
	assert.False(t, IsValidAnswerLetter("a"))
	assert.False(t, IsValidAnswerLetter("E"))
	assert.False(t, IsValidAnswerLetter(""))
}

func TestIDArray_ScanAndValue(t *testing.T) {
	// Arrange
	var fromBytes, fromString, fromNil IDArray

	// Act
	require.NoError(t, fromBytes.Scan([]byte("[3,1,2]")))
	require.NoError(t, fromString.Scan("[7]"))
	require.NoError(t, fromNil.Scan(nil))
	err := fromNil.Scan(42)

	// Assert
	assert.Equal(t, IDArray{3, 1, 2}, fromBytes)
	assert.Equal(t, IDArray{7}, fromString)
	assert.Error(t, err)

	v, err := IDArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = IDArray{5, 4}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[5,4]", v)
}
