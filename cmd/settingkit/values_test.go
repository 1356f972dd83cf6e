package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/settingkit/internal/setting"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		arg   string
		name  string
		value string
		err   bool
	}{
		{"autocrop=true", "autocrop", "true", false},
		{"output_directory=/tmp/a=b", "output_directory", "/tmp/a=b", false},
		{"file_extension=", "file_extension", "", false},
		{"autocrop", "", "", true},
		{"=true", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := parseAssignment(tt.arg)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseValue(t *testing.T) {
	mode, err := setting.NewEnum("mode", "a", []setting.Choice{
		setting.NewValueChoice("a", "A", 5),
		setting.NewValueChoice("b", "B", 7),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		s    *setting.Setting
		raw  string
		want any
		err  bool
	}{
		{"bool", setting.NewBool("b", false), "true", true, false},
		{"bool invalid", setting.NewBool("b", false), "yes please", nil, true},
		{"enum by id", mode, "b", 7, false},
		{"enum by number", mode, "5", 5, false},
		{"enum unknown", mode, "c", nil, true},
		{"int", setting.NewInt("i", 0), "-3", -3, false},
		{"int invalid", setting.NewInt("i", 0), "1.5", nil, true},
		{"float", setting.NewFloat("f", 0), "1.5", 1.5, false},
		{"float invalid", setting.NewFloat("f", 0), "x", nil, true},
		{"string", setting.NewString("s", ""), "hello", "hello", false},
		{"non-empty string", setting.NewNonEmptyString("s", "x"), "", "", false},
		{"generic", setting.New("g", nil), "x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValue(tt.s, tt.raw)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatValue(t *testing.T) {
	mode, err := setting.NewEnum("mode", "b", []setting.Choice{
		setting.NewChoice("a", "A"),
		setting.NewChoice("b", "B"),
	})
	require.NoError(t, err)

	assert.Equal(t, "b", formatValue(mode))
	assert.Equal(t, "true", formatValue(setting.NewBool("x", true)))
	assert.Equal(t, "png", formatValue(setting.NewString("s", "png")))
}
