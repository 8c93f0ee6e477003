package palette

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RGB
	}{
		{"with hash", "#FFD700", RGB{0xFF, 0xD7, 0x00}},
		{"lower case", "b87333", RGB{0xB8, 0x73, 0x33}},
		{"short form", "#fff", RGB{0xFF, 0xFF, 0xFF}},
		{"bad middle channel", "#FFzz00", RGB{0xFF, 0, 0}},
		{"truncated", "#FFD7", RGB{0xFF, 0xD7, 0}},
		{"empty", "", RGB{}},
		{"garbage", "not-a-color", RGB{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHex(tt.in))
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{0x1E, 0x90, 0xFF}
	assert.Equal(t, "#1E90FF", c.Hex())
	assert.Equal(t, c, ParseHex(c.Hex()))
}

func TestLerpEndpointsAndRounding(t *testing.T) {
	from := RGB{0, 0, 0}
	to := RGB{255, 100, 3}

	assert.Equal(t, from, Lerp(from, to, 0))
	assert.Equal(t, to, Lerp(from, to, 1))
	assert.Equal(t, from, Lerp(from, to, -3))
	assert.Equal(t, to, Lerp(from, to, 7))

	// 127.5 -> 128, 50 -> 50, 1.5 -> 2
	assert.Equal(t, RGB{128, 50, 2}, Lerp(from, to, 0.5))
}

func TestLerpDescending(t *testing.T) {
	got := Lerp(RGB{200, 200, 200}, RGB{100, 0, 250}, 0.25)
	assert.Equal(t, RGB{175, 150, 213}, got)
}

func TestScaleSaturates(t *testing.T) {
	assert.Equal(t, RGB{255, 255, 255}, RGB{200, 200, 200}.Scale(2))
	assert.Equal(t, RGB{100, 50, 0}, RGB{200, 100, 0}.Scale(0.5))
}

func TestJSONUsesHex(t *testing.T) {
	payload, err := json.Marshal(struct {
		Color RGB `json:"color"`
	}{RGB{0xDC, 0x14, 0x3C}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"#DC143C"}`, string(payload))

	var decoded struct {
		Color RGB `json:"color"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, RGB{0xDC, 0x14, 0x3C}, decoded.Color)
}
