package util

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceHelpers(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, TransformSlice([]int{1, 2}, strconv.Itoa))
	assert.Equal(t, []int{2, 4}, FilterSlice([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 }))
	assert.Empty(t, FilterSlice([]int{1}, func(int) bool { return false }))
	assert.Equal(t, []string{"a", "b", "c"}, FlatMapSlice([]string{"a b", "c"}, strings.Fields))
}

func TestBuildIndexName(t *testing.T) {
	assert.Equal(t, "users_email_idx", BuildIndexName("users", "email", "idx"))

	long := BuildIndexName(strings.Repeat("t", 60), "email", "idx")
	assert.Len(t, long, MaxIdentifierLength)
	assert.True(t, strings.HasSuffix(long, "_email_idx"))

	longColumn := BuildIndexName("users", strings.Repeat("c", 60), "idx")
	assert.Len(t, longColumn, MaxIdentifierLength)
	assert.True(t, strings.HasPrefix(longColumn, "users_"))
}

func TestBuildIndexNameCountsCharacters(t *testing.T) {
	accented := "a" + strings.Repeat("é", 40)
	assert.Equal(t, accented+"_email_idx", BuildIndexName(accented, "email", "idx"))

	long := BuildIndexName(strings.Repeat("表", 60), "名前", "idx")
	assert.Equal(t, strings.Repeat("表", 57)+"_名前_idx", long)
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, MaxIdentifierLength, utf8.RuneCountInString(long))

	longColumn := BuildIndexName("ユーザー", strings.Repeat("列", 60), "idx")
	assert.True(t, utf8.ValidString(longColumn))
	assert.Equal(t, MaxIdentifierLength, utf8.RuneCountInString(longColumn))
	assert.True(t, strings.HasPrefix(longColumn, "ユーザー_"))
}

func TestConcurrentMapFuncWithError(t *testing.T) {
	inputs := []int{5, 4, 3, 2, 1}
	for _, concurrency := range []int{0, 1, 3, -1} {
		outputs, err := ConcurrentMapFuncWithError(inputs, concurrency, func(i int) (string, error) {
			return strconv.Itoa(i * 10), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"50", "40", "30", "20", "10"}, outputs, "concurrency %d", concurrency)
	}

	_, err := ConcurrentMapFuncWithError(inputs, 2, func(i int) (int, error) {
		if i == 3 {
			return 0, errors.New("three")
		}
		return i, nil
	})
	assert.EqualError(t, err, "three")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
