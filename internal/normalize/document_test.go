package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	t.Run("valid cpf and rg", func(t *testing.T) {
		doc, err := ParseDocument(`{"cpf": "529.982.247-25", "rg": "12.345.678-9", "rg_formatted": "12.345.678-9"}`)
		require.NoError(t, err)
		assert.Equal(t, "52998224725", doc.CPF)
		assert.Equal(t, "529.982.247-25", doc.CPFFormatted)
		assert.Equal(t, "123456789", doc.RG)
		assert.Equal(t, "12.345.678-9", doc.RGFormatted)
	})

	t.Run("invalid cpf keeps rg", func(t *testing.T) {
		doc, err := ParseDocument(`{"cpf": "52998224726", "rg": "1234567"}`)
		require.NoError(t, err)
		assert.Empty(t, doc.CPF)
		assert.Empty(t, doc.CPFFormatted)
		assert.Equal(t, "1234567", doc.RG)
		assert.NotEmpty(t, doc.RGFormatted)
	})

	t.Run("rg formatted that disagrees is replaced", func(t *testing.T) {
		doc, err := ParseDocument(`{"rg": "123456789", "rg_formatted": "99.999.999-9"}`)
		require.NoError(t, err)
		assert.Equal(t, "12.345.678-9", doc.RGFormatted)
	})

	t.Run("nothing valid", func(t *testing.T) {
		doc, err := ParseDocument(`{"cpf": "11111111111", "rg": "123"}`)
		assert.ErrorIs(t, err, ErrNoValidDocument)
		assert.Nil(t, doc)
	})

	t.Run("nulls", func(t *testing.T) {
		_, err := ParseDocument(`{"cpf": null, "rg": null}`)
		assert.ErrorIs(t, err, ErrNoValidDocument)
	})
}

func TestLLMDocumentNormalizer(t *testing.T) {
	completer := &stubCompleter{answer: `{"cpf": "11144477735", "rg": null}`}
	n := NewLLMDocumentNormalizer(completer)

	doc, err := n.NormalizeDocument(context.Background(), "CPF: 111.444.777-35")

	require.NoError(t, err)
	assert.Equal(t, "11144477735", doc.CPF)
	assert.Equal(t, "111.444.777-35", doc.CPFFormatted)
	assert.Contains(t, completer.prompt, "111.444.777-35")
}
