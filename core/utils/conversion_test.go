package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"blank string", "   ", 0},
		{"int", 7, 7},
		{"negative int", -3, -3},
		{"int64", int64(12), 12},
		{"float truncates", 5.9, 5},
		{"float32 truncates", float32(2.7), 2},
		{"numeric string", "42", 42},
		{"padded numeric string", " 42 ", 42},
		{"decimal string truncates", "5.0", 5},
		{"unparsable string", "n/a", 0},
		{"bytes", []byte("9"), 9},
		{"garbage bytes", []byte("??"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "5", ToString(5))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(1))
	assert.True(t, ToBool("1"))
	assert.True(t, ToBool("TRUE"))
	assert.False(t, ToBool(0))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}
