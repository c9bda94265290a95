package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var validCPFs = []string{"52998224725", "11144477735", "12345678909"}

func TestValidCPF(t *testing.T) {
	for _, cpf := range validCPFs {
		assert.True(t, ValidCPF(cpf), cpf)
	}

	assert.True(t, ValidCPF("529.982.247-25"))
	assert.False(t, ValidCPF("11111111111"))
	assert.False(t, ValidCPF("00000000000"))
	assert.False(t, ValidCPF("5299822472"))
	assert.False(t, ValidCPF("529982247250"))
	assert.False(t, ValidCPF(""))
}

func TestValidCPF_CheckDigitMutations(t *testing.T) {
	for _, cpf := range validCPFs {
		for pos := 9; pos <= 10; pos++ {
			for digit := byte('0'); digit <= '9'; digit++ {
				if cpf[pos] == digit {
					continue
				}
				mutated := []byte(cpf)
				mutated[pos] = digit
				assert.False(t, ValidCPF(string(mutated)), fmt.Sprintf("%s -> %s", cpf, mutated))
			}
		}
	}
}

func TestValidCNH(t *testing.T) {
	assert.True(t, ValidCNH("12345678903"))
	assert.True(t, ValidCNH("98765432110"))

	assert.False(t, ValidCNH("12345678900"))
	assert.False(t, ValidCNH("98765432111"))
	assert.False(t, ValidCNH("1234567890"))
	assert.False(t, ValidCNH("123.456.789-03"))
	assert.False(t, ValidCNH(""))
}

func TestValidCNH_TruncatedRemainder(t *testing.T) {
	// Discounted sum is -2: truncation yields check digit 0, a floored modulo would yield 2.
	assert.True(t, ValidCNH("00000000000"))
	assert.False(t, ValidCNH("00000000002"))
}

func TestValidRG(t *testing.T) {
	assert.True(t, ValidRG("12.345.678-9"))
	assert.True(t, ValidRG("1234567"))
	assert.True(t, ValidRG("12345678"))
	assert.False(t, ValidRG("123456"))
	assert.False(t, ValidRG("1234567890"))
	assert.False(t, ValidRG(""))
}

func TestFormatDocuments(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))
	assert.Equal(t, "123", FormatCPF("123"))
	assert.Equal(t, "12.345.678-9", FormatRG("123456789"))
	assert.Equal(t, "1.234.567-8", FormatRG("12345678"))
	assert.Equal(t, "123.456-7", FormatRG("1234567"))
}
