package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListRoundTrip(t *testing.T) {
	options := StringList{"Amsterdam", "Berlin", "Copenhagen", "Dublin"}

	value, err := options.Value()
	require.NoError(t, err)

	var decoded StringList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, options, decoded, "options must survive storage in the same order")
}

func TestStringListScanNil(t *testing.T) {
	var decoded StringList
	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
}

func TestQuestionTypeObjective(t *testing.T) {
	assert.True(t, MultipleChoice.Objective())
	assert.True(t, TrueFalse.Objective())
	assert.True(t, ShortAnswer.Objective())
	assert.True(t, FillInBlank.Objective())
	assert.False(t, Essay.Objective())
}

func TestQuestionTypeValid(t *testing.T) {
	for _, valid := range []QuestionType{MultipleChoice, TrueFalse, Essay, ShortAnswer, FillInBlank} {
		assert.True(t, valid.Valid(), string(valid))
	}
	assert.False(t, QuestionType("matching").Valid())
	assert.False(t, QuestionType("").Valid())
}
