package intake

import (
	"strconv"
	"strings"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/platform/phone"
	"leadcapture_backend/platform/sanitize"
)

// LeadDraft is the canonical intake shape produced from a raw webhook payload.
// Phone and Document are digits-only; Capital is parsed BRL (0 on failure).
type LeadDraft struct {
	Name     string
	Email    string
	Phone    string
	City     string
	State    string
	Document string
	Capital  int64
	Message  string
	Source   string
}

// Alias chains per canonical field. External forms label fields
// unpredictably (Portuguese, English, display labels); each chain is tried
// in order and the first non-empty value wins. Labels are matched after
// lowercasing and stripping spaces, dashes, and underscores.
var (
	nameAliases     = []string{"nome", "nome completo", "name", "full name", "your name"}
	emailAliases    = []string{"email", "e-mail", "e-mail address", "email address", "mail"}
	phoneAliases    = []string{"telefone", "whatsapp", "phone", "celular", "tel", "phone number"}
	cityAliases     = []string{"cidade", "city"}
	stateAliases    = []string{"estado", "state", "uf"}
	documentAliases = []string{"documento", "cpf ou cnpj", "cpf_cnpj", "cpf", "cnpj", "document"}
	capitalAliases  = []string{"capital", "capital disponivel", "capital disponível", "capital_disponivel", "investimento", "investment"}
	messageAliases  = []string{"mensagem", "message", "observacao", "comments"}
)

const (
	maxTextLen    = 255
	maxMessageLen = 1000
)

// Normalize maps an arbitrary string-keyed payload into a canonical
// LeadDraft. It is pure: no side effects and no repository access.
func Normalize(payload map[string]any, channel string) LeadDraft {
	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		v := strings.TrimSpace(stringValue(value))
		if v == "" {
			continue
		}
		k := normalizeLabel(key)
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}

	draft := LeadDraft{
		Name:     sanitize.Text(resolve(fields, nameAliases), maxTextLen),
		Email:    strings.ToLower(strings.TrimSpace(resolve(fields, emailAliases))),
		Phone:    phone.Digits(resolve(fields, phoneAliases)),
		City:     sanitize.Text(resolve(fields, cityAliases), maxTextLen),
		State:    sanitize.Text(resolve(fields, stateAliases), maxTextLen),
		Document: phone.Digits(resolve(fields, documentAliases)),
		Capital:  parseCapital(resolve(fields, capitalAliases)),
		Message:  sanitize.Text(resolve(fields, messageAliases), maxMessageLen),
		Source:   channel,
	}

	return draft
}

// DocumentType derives CPF/CNPJ from the draft's digits-only document.
// Returns nil when no document was provided.
func (d LeadDraft) DocumentType() *domain.DocumentType {
	if d.Document == "" {
		return nil
	}
	dt := domain.DocumentTypeFor(d.Document)
	return &dt
}

// resolve walks an alias chain and returns the first non-empty value.
func resolve(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := fields[normalizeLabel(alias)]; ok && v != "" {
			return v
		}
	}
	return ""
}

var labelReplacer = strings.NewReplacer("-", "", "_", "", " ", "")

func normalizeLabel(label string) string {
	return labelReplacer.Replace(strings.ToLower(strings.TrimSpace(label)))
}

// parseCapital strips everything but digits and parses the remainder.
// Unparseable input yields 0, never an error: a lead with unknown capital
// still enters the pipeline at the base score.
func parseCapital(raw string) int64 {
	digits := phone.Digits(raw)
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// stringValue renders JSON payload values as strings. Numbers arrive as
// float64 from encoding/json; whole values must not gain a decimal point.
func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}
