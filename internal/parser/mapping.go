package parser

import (
	"strings"
	"unicode"
)

// Role is the semantic meaning of a statement column
type Role string

const (
	RoleDate          Role = "date"
	RoleDescription   Role = "description"
	RoleAmount        Role = "amount"
	RoleWithdrawal    Role = "withdrawal"
	RoleDeposit       Role = "deposit"
	RoleBalance       Role = "balance"
	RolePaymentMethod Role = "payment-method"
	RoleRefund        Role = "refund"
	RoleUser          Role = "user"
)

// ColumnRule resolves a header label to a Role.
// A label matches when it contains any Include token and none of the Exclude tokens.
type ColumnRule struct {
	Role    Role
	Include []string
	Exclude []string
}

func (r ColumnRule) matches(label string) bool {
	return ContainsAny(label, r.Include...) && !ContainsAny(label, r.Exclude...)
}

// ColumnMapping maps roles to zero-based field indexes for one header row
type ColumnMapping struct {
	headers []string
	index   map[Role]int
}

// BuildMapping scans header labels against rules.
//
// Labels are compared with whitespace removed and ASCII lower-cased. Each label is
// assigned the first rule it matches, and a role keeps the first column that resolved it,
// so "利用金額" wins over a later "支払総額" style column matching the same role.
func BuildMapping(headers []string, rules []ColumnRule) *ColumnMapping {
	m := &ColumnMapping{
		headers: headers,
		index:   make(map[Role]int, len(rules)),
	}
	for i, header := range headers {
		label := NormalizeLabel(header)
		if label == "" {
			continue
		}
		for _, rule := range rules {
			if !rule.matches(label) {
				continue
			}
			if _, taken := m.index[rule.Role]; !taken {
				m.index[rule.Role] = i
			}
			break
		}
	}
	return m
}

// Index returns the column for role, or -1
func (m *ColumnMapping) Index(role Role) int {
	if i, ok := m.index[role]; ok {
		return i
	}
	return -1
}

// Has reports whether role was resolved
func (m *ColumnMapping) Has(role Role) bool {
	_, ok := m.index[role]
	return ok
}

// Value returns the field for role, or "" when the role is unresolved or the row is short
func (m *ColumnMapping) Value(fields []string, role Role) string {
	i := m.Index(role)
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// Headers returns the header labels as they appeared in the file
func (m *ColumnMapping) Headers() []string {
	return m.headers
}

// RawData pairs each original header label with the row's field.
// Missing trailing fields map to "".
func (m *ColumnMapping) RawData(fields []string) map[string]string {
	raw := make(map[string]string, len(m.headers))
	for i, header := range m.headers {
		if i < len(fields) {
			raw[header] = fields[i]
		} else {
			raw[header] = ""
		}
	}
	return raw
}

// NormalizeLabel removes all whitespace (including U+3000) and lower-cases ASCII letters
func NormalizeLabel(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r < unicode.MaxASCII {
			return unicode.ToLower(r)
		}
		return r
	}, s)
}

// ContainsAny reports whether s contains at least one of tokens
func ContainsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether s contains every token
func ContainsAll(s string, tokens ...string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
