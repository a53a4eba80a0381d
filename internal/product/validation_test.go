package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput_Valid(t *testing.T) {
	in, errs := ParseInput(map[string]any{"name": "Widget", "price": 9.99})
	assert.Empty(t, errs)
	assert.Equal(t, Input{Name: "Widget", Price: 9.99}, in)
}

func TestParseInput_CoercesStrings(t *testing.T) {
	in, errs := ParseInput(map[string]any{"name": 42.0, "price": "19.5"})
	assert.Empty(t, errs)
	assert.Equal(t, Input{Name: "42", Price: 19.5}, in)
}

func TestParseInput_MissingName(t *testing.T) {
	_, errs := ParseInput(map[string]any{"price": 5.0})
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{
		Type:     "field",
		Msg:      "name is required",
		Path:     "name",
		Location: "body",
	}, errs[0])
}

func TestParseInput_BadPrice(t *testing.T) {
	tests := []struct {
		name  string
		price any
	}{
		{name: "missing", price: nil},
		{name: "zero", price: 0.0},
		{name: "negative", price: -5.0},
		{name: "text", price: "cheap"},
		{name: "bool", price: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{"name": "Widget"}
			if tt.price != nil {
				raw["price"] = tt.price
			}

			_, errs := ParseInput(raw)
			require.Len(t, errs, 1)
			assert.Equal(t, "price", errs[0].Path)
			assert.Equal(t, "price must be positive", errs[0].Msg)
			assert.Equal(t, tt.price, errs[0].Value)
		})
	}
}

func TestParseInput_ReportsEveryField(t *testing.T) {
	_, errs := ParseInput(map[string]any{})
	require.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Path)
	assert.Equal(t, "price", errs[1].Path)
}
