package pipeline

import (
	"testing"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1587, "1.5 KB"},
		{2048, "2 KB"},
		{1048576, "1 MB"},
		{1572864, "1.5 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.in))
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, models.UnknownSize, FormatSize(nil))
	assert.Equal(t, models.UnknownSize, FormatSize(models.Int64Ptr(-1)))
	assert.Equal(t, "0 B", FormatSize(models.Int64Ptr(0)))
	assert.Equal(t, "2 KB", FormatSize(models.Int64Ptr(2048)))
}
