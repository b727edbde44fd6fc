/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity_test.go
Description: Tests for normalized sequence similarity.
*/

package similarity_test

import (
	"testing"

	"github.com/kleascm/mimicry/pkg/similarity"
	"github.com/stretchr/testify/assert"
)

func TestScoreBounds(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Score("Account_Number", "account_number"))
	assert.Equal(t, 1.0, similarity.Score("", ""))

	s := similarity.Score("account_number", "branch")
	assert.GreaterOrEqual(t, s, 0.0)
	assert.Less(t, s, similarity.DefaultThreshold)
}

func TestScoreNearMiss(t *testing.T) {
	// One dropped character in fourteen
	assert.GreaterOrEqual(t, similarity.Score("account_numbr", "account_number"), similarity.DefaultThreshold)
}

func TestValueSetScore(t *testing.T) {
	known := []string{"Y", "N"}
	assert.Equal(t, 1.0, similarity.ValueSetScore([]string{"y", " n "}, known))
	assert.Equal(t, 0.0, similarity.ValueSetScore(nil, known))
	assert.Less(t, similarity.ValueSetScore([]string{"2024-01-01"}, known), similarity.DefaultThreshold)
}

func TestBestPrefersFirstOnTies(t *testing.T) {
	m := similarity.Best("abc", []string{"abd", "abe", "xyz"})
	assert.Equal(t, 0, m.Index)

	assert.Equal(t, -1, similarity.Best("abc", nil).Index)
}
