package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"whole float", float64(42), "42"},
		{"fractional float", 4.25, "4.25"},
		{"bool", true, "true"},
		{"bytes", []byte("sv5a"), "sv5a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.in))
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 7, ToInt(float64(7)))
	assert.Equal(t, 7, ToInt("7"))
	assert.Equal(t, 0, ToInt("not a number"))
	assert.Equal(t, 0, ToInt(nil))
}
