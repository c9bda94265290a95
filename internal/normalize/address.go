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

var ErrIncompleteAddress = errors.New("normalized address is missing street, city or state")

const addressSystemPrompt = `Você é um assistente que padroniza endereços brasileiros para uma empresa de coletas domiciliares.
Responda somente com um objeto JSON com as chaves: rua, numero, complemento, bairro, cidade, estado, cep.
Use null para informações ausentes. "estado" deve ser a sigla da UF com 2 letras. "cep" deve conter 8 dígitos.
Não invente dados que não estejam no texto.`

// LLMAddressNormalizer structures free-text addresses through a completion model.
type LLMAddressNormalizer struct {
	completer Completer
}

// NewLLMAddressNormalizer creates an address normalizer backed by the given completer.
func NewLLMAddressNormalizer(completer Completer) *LLMAddressNormalizer {
	return &LLMAddressNormalizer{completer: completer}
}

// NormalizeAddress asks the model to structure raw and re-validates the answer.
func (n *LLMAddressNormalizer) NormalizeAddress(ctx context.Context, raw string) (*entities.NormalizedAddress, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf("Padronize o endereço abaixo.\n\nEndereço: %s", raw)
	answer, err := n.completer.CompleteJSON(ctx, addressSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("address completion: %w", err)
	}
	return ParseAddress(answer)
}

// ParseAddress decodes a model answer and applies the address rules: street,
// city and state are required, state is cut to two upper-case letters and the
// postal code is kept only when it has exactly eight digits.
func ParseAddress(answer string) (*entities.NormalizedAddress, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(answer), &payload); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}

	addr := &entities.NormalizedAddress{
		Street:       field(payload, "rua"),
		Number:       field(payload, "numero"),
		Complement:   field(payload, "complemento"),
		Neighborhood: field(payload, "bairro"),
		City:         field(payload, "cidade"),
		State:        normalizeState(field(payload, "estado")),
		PostalCode:   formatPostalCode(field(payload, "cep")),
	}

	if addr.Street == "" || addr.City == "" || addr.State == "" {
		return nil, ErrIncompleteAddress
	}
	return addr, nil
}

func normalizeState(state string) string {
	letters := []rune(strings.ToUpper(strings.TrimSpace(state)))
	if len(letters) < 2 {
		return ""
	}
	return string(letters[:2])
}

func formatPostalCode(cep string) string {
	digits := extract.Digits(cep)
	if len(digits) != 8 {
		return ""
	}
	return digits[:5] + "-" + digits[5:]
}

// field reads a JSON value as trimmed text; null, missing and the literal "null" are empty.
func field(payload map[string]any, key string) string {
	s, ok := extract.String(payload[key])
	if !ok || strings.EqualFold(s, "null") {
		return ""
	}
	return s
}
