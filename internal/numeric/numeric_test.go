package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	price := "1250.00"
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"decimal string", "1250.00", 1250},
		{"bytes", []byte("2500"), 2500},
		{"padded", "  19.5 ", 19.5},
		{"negative", "-3.25", -3.25},
		{"nil", nil, 0},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"nan string", "NaN", 0},
		{"float nan", math.NaN(), 0},
		{"float inf", math.Inf(1), 0},
		{"int64", int64(7), 7},
		{"decimal", decimal.RequireFromString("10.10"), 10.1},
		{"string pointer", &price, 1250},
		{"nil string pointer", (*string)(nil), 0},
		{"unsupported", struct{}{}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in))
		})
	}
}

func TestNumber_Scan(t *testing.T) {
	var n Number
	assert.NoError(t, n.Scan("2500"))
	assert.Equal(t, 2500.0, n.Float64())

	assert.NoError(t, n.Scan(nil))
	assert.Equal(t, 0.0, n.Float64())

	assert.NoError(t, n.Scan([]byte("not a number")))
	assert.Equal(t, 0.0, n.Float64())
}

func TestNumber_Value(t *testing.T) {
	v, err := Number(12.5).Value()
	assert.NoError(t, err)
	assert.Equal(t, "12.5", v)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 3.0, Round2(3))
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.125, Round3(0.125))
	assert.Equal(t, 2.005, Round3(2.005))
	assert.Equal(t, 1.001, Round3(1.0005))
	assert.Equal(t, 0.3, Round3(0.1+0.2))
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var in struct {
		Price Number `json:"prix_vente"`
		Stock Number `json:"stock"`
		Empty Number `json:"empty"`
	}
	err := json.Unmarshal([]byte(`{"prix_vente":"2500","stock":12.5,"empty":null}`), &in)
	assert.NoError(t, err)
	assert.Equal(t, Number(2500), in.Price)
	assert.Equal(t, Number(12.5), in.Stock)
	assert.Equal(t, Number(0), in.Empty)
}
