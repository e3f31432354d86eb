package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{name: "native float", input: 123.45, expected: 123.45},
		{name: "native int", input: 300, expected: 300},
		{name: "plain string", input: "88.8", expected: 88.8},
		{name: "thousands separator", input: "1,200.50", expected: 1200.50},
		{name: "full-width separator", input: "1，200.50", expected: 1200.50},
		{name: "currency symbol", input: "¥500", expected: 500},
		{name: "unparseable string", input: "abc", expected: 0},
		{name: "nil", input: nil, expected: 0},
		{name: "empty string", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAmount(tt.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "canonical date unchanged", input: "2024-01-10", expected: "2024-01-10"},
		{name: "ISO datetime keeps date portion", input: "2024-01-10T08:30:00Z", expected: "2024-01-10"},
		{name: "space-separated datetime", input: "2024-01-10 08:30:00", expected: "2024-01-10"},
		{name: "slash format", input: "2024/01/10", expected: "2024-01-10"},
		{name: "chinese format", input: "2024年01月10日", expected: "2024-01-10"},
		{name: "garbage falls back to today", input: "next tuesday", expected: "2024-03-15"},
		{name: "non-string falls back to today", input: 42, expected: "2024-03-15"},
		{name: "empty falls back to today", input: "", expected: "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDate(tt.input, testNow))
		})
	}
}

func TestAmountFieldFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		bag      entity.FieldBag
		expected float64
	}{
		{
			name:     "amount has highest priority",
			bag:      entity.FieldBag{"amount": 10.0, "totalAmount": 20.0},
			expected: 10,
		},
		{
			name:     "totalAmount when amount absent",
			bag:      entity.FieldBag{"totalAmount": "1,500", "price": 3.0},
			expected: 1500,
		},
		{
			name:     "fare synonym is not treated as missing",
			bag:      entity.FieldBag{"fare": "480"},
			expected: 480,
		},
		{
			name:     "no synonym present",
			bag:      entity.FieldBag{"seller": "x"},
			expected: 0,
		},
		{name: "nil bag", bag: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountField(tt.bag))
		})
	}
}

func TestTextField(t *testing.T) {
	bag := entity.FieldBag{"projectName": "  会议费  ", "name": "backup"}
	assert.Equal(t, "会议费", TextField(bag, "projectName", "name"))

	// Blank values fall through to the next key in the chain.
	bag = entity.FieldBag{"projectName": "   ", "name": "backup"}
	assert.Equal(t, "backup", TextField(bag, "projectName", "name"))

	assert.Equal(t, "", TextField(nil, "projectName"))
}

func TestDateFieldDefaultsToToday(t *testing.T) {
	assert.Equal(t, "2024-03-15", DateField(entity.FieldBag{}, testNow))
	assert.Equal(t, "2024-01-02", DateField(entity.FieldBag{"invoiceDate": "2024-01-02"}, testNow))
}
