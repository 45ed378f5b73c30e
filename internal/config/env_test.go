// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("CONFIRMGATE_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("CONFIRMGATE_TEST_STR", "def"))

	t.Setenv("CONFIRMGATE_TEST_STR", "")
	assert.Equal(t, "def", ParseString("CONFIRMGATE_TEST_STR", "def"), "empty falls back to default")

	assert.Equal(t, "def", ParseString("CONFIRMGATE_TEST_UNSET", "def"))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"no", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("CONFIRMGATE_TEST_BOOL", tt.value)
		assert.Equal(t, tt.want, ParseBool("CONFIRMGATE_TEST_BOOL", tt.def), "value %q", tt.value)
	}
}

func TestParseNumbersAndDurations(t *testing.T) {
	t.Setenv("CONFIRMGATE_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("CONFIRMGATE_TEST_INT", 1))
	t.Setenv("CONFIRMGATE_TEST_INT", "4.2")
	assert.Equal(t, 1, ParseInt("CONFIRMGATE_TEST_INT", 1))

	t.Setenv("CONFIRMGATE_TEST_FLOAT", "0.5")
	assert.InDelta(t, 0.5, ParseFloat("CONFIRMGATE_TEST_FLOAT", 1), 1e-9)

	t.Setenv("CONFIRMGATE_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("CONFIRMGATE_TEST_DUR", time.Second))
	t.Setenv("CONFIRMGATE_TEST_DUR", "90")
	assert.Equal(t, time.Second, ParseDuration("CONFIRMGATE_TEST_DUR", time.Second))
}

func TestParseList(t *testing.T) {
	t.Setenv("CONFIRMGATE_TEST_LIST", " a ,b,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, ParseList("CONFIRMGATE_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseList("CONFIRMGATE_TEST_LIST_UNSET", []string{"x"}))
}

func TestIsSensitive(t *testing.T) {
	assert.True(t, isSensitive(EnvRedisPassword))
	assert.False(t, isSensitive(EnvRedisAddr))
}
