package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/extract"
)

var ErrNoValidDocument = errors.New("no valid CPF or RG in normalized document")

const documentSystemPrompt = `Você é um assistente que extrai documentos de identificação brasileiros de textos livres.
Responda somente com um objeto JSON com as chaves: cpf, rg, cpf_formatted, rg_formatted.
"cpf" e "rg" devem conter apenas dígitos. Use null quando o documento não estiver presente.
Não invente números.`

// LLMDocumentNormalizer extracts CPF and RG numbers through a completion model.
type LLMDocumentNormalizer struct {
	completer Completer
}

// NewLLMDocumentNormalizer creates a document normalizer backed by the given completer.
func NewLLMDocumentNormalizer(completer Completer) *LLMDocumentNormalizer {
	return &LLMDocumentNormalizer{completer: completer}
}

// NormalizeDocument asks the model for the IDs in raw and re-validates them.
func (n *LLMDocumentNormalizer) NormalizeDocument(ctx context.Context, raw string) (*entities.NormalizedDocument, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf("Extraia o CPF e o RG do texto abaixo.\n\nTexto: %s", raw)
	answer, err := n.completer.CompleteJSON(ctx, documentSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("document completion: %w", err)
	}
	return ParseDocument(answer)
}

// ParseDocument decodes a model answer and keeps only the IDs that validate:
// CPF by checksum, RG by digit count. One valid ID is enough.
func ParseDocument(answer string) (*entities.NormalizedDocument, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(answer), &payload); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &entities.NormalizedDocument{}

	if cpf := extract.Digits(field(payload, "cpf")); extract.ValidCPF(cpf) {
		doc.CPF = cpf
		doc.CPFFormatted = extract.FormatCPF(cpf)
	}

	if rg := extract.Digits(field(payload, "rg")); extract.ValidRG(rg) {
		doc.RG = rg
		doc.RGFormatted = field(payload, "rg_formatted")
		if extract.Digits(doc.RGFormatted) != rg {
			doc.RGFormatted = extract.FormatRG(rg)
		}
	}

	if doc.CPF == "" && doc.RG == "" {
		return nil, ErrNoValidDocument
	}
	return doc, nil
}
