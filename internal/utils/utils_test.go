package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple", input: "Kemeja Batik", expected: "kemeja-batik"},
		{name: "With Special Chars", input: "Topi & Syal!", expected: "topi-syal"},
		{name: "Multiple Dashes", input: "  Celana   --  Jeans ", expected: "celana-jeans"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestPtrHelpers(t *testing.T) {
	t.Run("StrPtr", func(t *testing.T) {
		ptr := StrPtr("test")
		assert.NotNil(t, ptr)
		assert.Equal(t, "test", *ptr)
	})

	t.Run("PtrString", func(t *testing.T) {
		str := "test"
		assert.Equal(t, "test", PtrString(&str))
		assert.Equal(t, "", PtrString(nil))
	})
}

func TestNormalizePhoneID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"08123456789", "+628123456789"},
		{"+62 812-3456-789", "+628123456789"},
		{"628123456789", "+628123456789"},
		{"8123456789", "+628123456789"},
		{"+1 555 0100", "+15550100"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhoneID(tt.input))
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0812-3456-789"))
	assert.False(t, ValidPhone("123"))
	assert.False(t, ValidPhone(""))
}

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		expected string
	}{
		{decimal.Zero, "Rp 0"},
		{decimal.NewFromInt(100), "Rp 100"},
		{decimal.NewFromInt(1000), "Rp 1.000"},
		{decimal.NewFromInt(160000), "Rp 160.000"},
		{decimal.NewFromInt(1000000), "Rp 1.000.000"},
		{decimal.NewFromInt(123456789), "Rp 123.456.789"},
		{decimal.RequireFromString("999.6"), "Rp 1.000"},
		{decimal.NewFromInt(-5000), "-Rp 5.000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatIDR(tt.amount))
		})
	}
}

func TestGenerateOrderCode(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		code := GenerateOrderCode(time.Date(2026, 3, 1, 10, 30, 0, 123*int(time.Millisecond), time.UTC))

		parts := strings.Split(code, "-")
		if assert.Len(t, parts, 5) {
			assert.Equal(t, "ORD", parts[0])
			assert.Equal(t, "20260301", parts[1])
			assert.Equal(t, "103000", parts[2])
			assert.Equal(t, "123", parts[3])
			assert.Len(t, parts[4], 4)
		}
	})
}
