package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomCode_CarAndUnit(t *testing.T) {
	rc, ok := ParseRoomCode("AD-SF-FQ-AC-AV CENTER 3 CARRO 1 - UND84")

	require.True(t, ok)
	assert.Equal(t, "AD-SF-FQ-AC-AV", rc.Code)
	assert.Equal(t, "CENTER 3 CARRO 1 - UND84", rc.Payload)
	assert.Equal(t, "CENTER 3 CARRO 1", rc.Car)
	assert.Equal(t, "UND84", rc.Unit)
}

func TestParseRoomCode_SeparatorInsideCarName(t *testing.T) {
	rc, ok := ParseRoomCode("AD-SF-FQ-AC-AV CENTER 3 - CARRO 1 - UND84")

	require.True(t, ok)
	assert.Equal(t, "CENTER 3 - CARRO 1", rc.Car)
	assert.Equal(t, "UND84", rc.Unit)
}

func TestSplitCarUnit(t *testing.T) {
	tests := []struct {
		input, car, unit string
	}{
		{"CARRO 1 - UND84", "CARRO 1", "UND84"},
		{"CENTER 3 - CARRO 1 - UND84", "CENTER 3 - CARRO 1", "UND84"},
		{" CARRO 2 ", "CARRO 2", ""},
		{"CARRO 2 - ", "CARRO 2 -", ""},
	}

	for _, tt := range tests {
		car, unit := SplitCarUnit(tt.input)
		assert.Equal(t, tt.car, car, tt.input)
		assert.Equal(t, tt.unit, unit, tt.input)
	}
}

func TestParseRoomCode_WithoutUnit(t *testing.T) {
	rc, ok := ParseRoomCode("  AD-SF-FQ-AC-AV   CARRO 2 ")

	require.True(t, ok)
	assert.Equal(t, "CARRO 2", rc.Car)
	assert.Empty(t, rc.Unit)
}

func TestParseRoomCode_NoPayload(t *testing.T) {
	assert.True(t, IsRoomCode("AD-SF-FQ-AC-AV"))

	_, ok := ParseRoomCode("AD-SF-FQ-AC-AV")
	assert.False(t, ok)
}

func TestIsRoomCode(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{"AD-SF-FQ-AC-AV CENTER 3 CARRO 1 - UND84", true},
		{"ABC-DEF-GH-IJ-KLM CARRO", true},
		{"ad-sf-fq-ac-av CARRO", false},
		{"AD-SF-FQ-AC CARRO", false},
		{"A-SF-FQ-AC-AV CARRO", false},
		{"AD-SF-FQ-AC-AV-XY CARRO", false},
		{"SALA 3", false},
		{"", false},
		{nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRoomCode(tt.input), "input %v", tt.input)
	}
}
