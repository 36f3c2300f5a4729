// Package registry dispatches statement text to the matching format parser
package registry

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parsers/bank"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parsers/card"
)

// Registry holds the bank and card parsers in detection priority order.
// A Registry is safe for concurrent use once built.
type Registry struct {
	banks  []parser.BankParser
	cards  []parser.CardParser
	logger *log.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for detection diagnostics
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a registry with all built-in parsers.
// Banks are tried format A then B, cards format A then B.
func New(opts ...Option) *Registry {
	r := &Registry{
		banks: []parser.BankParser{
			bank.NewRakutenParser(),
			bank.NewMizuhoParser(),
		},
		cards: []parser.CardParser{
			card.NewRakutenParser(),
			card.NewSaisonParser(),
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterBankParser appends a bank parser after the built-ins
func (r *Registry) RegisterBankParser(p parser.BankParser) {
	r.banks = append(r.banks, p)
}

// RegisterCardParser appends a card parser after the built-ins
func (r *Registry) RegisterCardParser(p parser.CardParser) {
	r.cards = append(r.cards, p)
}

// DetectBank returns the first bank parser whose detector accepts content
func (r *Registry) DetectBank(content string) (parser.BankParser, bool) {
	lines := csvtext.SplitLines(content)
	for _, p := range r.banks {
		if p.CanParse(lines) {
			r.logger.Debug("detected bank format", "format", p.Format(), "name", p.Name())
			return p, true
		}
	}
	r.logger.Debug("no bank format matched", "lines", len(lines))
	return nil, false
}

// DetectCard returns the first card parser whose detector accepts content
func (r *Registry) DetectCard(content string) (parser.CardParser, bool) {
	lines := csvtext.SplitLines(content)
	for _, p := range r.cards {
		if p.CanParse(lines) {
			r.logger.Debug("detected card format", "format", p.Format(), "name", p.Name())
			return p, true
		}
	}
	r.logger.Debug("no card format matched", "lines", len(lines))
	return nil, false
}

// AutoParseBank detects the bank format and parses content.
// When nothing matches the result carries a single row-0 error and BankUnknown.
func (r *Registry) AutoParseBank(content string) *parser.BankResult {
	p, ok := r.DetectBank(content)
	if !ok {
		return parser.BankFailure(parser.BankUnknown, parser.MsgUnknownBankFormat, "")
	}
	return p.Parse(content)
}

// AutoParseCard detects the card format and parses content
func (r *Registry) AutoParseCard(content string) *parser.CardResult {
	p, ok := r.DetectCard(content)
	if !ok {
		return parser.CardFailure(parser.CardUnknown, parser.MsgUnknownCardFormat, "")
	}
	return p.Parse(content)
}

// ParseBank parses content with the explicitly selected format, skipping detection.
// BankUnknown falls back to auto-detection. An unregistered format fails with the
// requested format echoed in BankType.
func (r *Registry) ParseBank(content string, format parser.BankFormat) *parser.BankResult {
	if format == parser.BankUnknown {
		return r.AutoParseBank(content)
	}
	for _, p := range r.banks {
		if p.Format() == format {
			return p.Parse(content)
		}
	}
	return parser.BankFailure(format, fmt.Sprintf(parser.MsgUnsupportedBankTag, format), "")
}

// ParseCard parses content with the explicitly selected format, skipping detection.
// CardUnknown falls back to auto-detection. An unregistered format fails with the
// requested format echoed in CardType.
func (r *Registry) ParseCard(content string, format parser.CardFormat) *parser.CardResult {
	if format == parser.CardUnknown {
		return r.AutoParseCard(content)
	}
	for _, p := range r.cards {
		if p.Format() == format {
			return p.Parse(content)
		}
	}
	return parser.CardFailure(format, fmt.Sprintf(parser.MsgUnsupportedCardTag, format), "")
}

// ParseBankTag resolves a serialization tag and parses. An empty tag auto-detects;
// an unrecognized tag yields a row-0 error naming it.
func (r *Registry) ParseBankTag(content, tag string) *parser.BankResult {
	if tag == "" {
		return r.AutoParseBank(content)
	}
	format, ok := parser.ParseBankFormat(tag)
	if !ok {
		return parser.BankFailure(parser.BankUnknown, fmt.Sprintf(parser.MsgUnsupportedBankTag, tag), "")
	}
	return r.ParseBank(content, format)
}

// ParseCardTag resolves a serialization tag and parses
func (r *Registry) ParseCardTag(content, tag string) *parser.CardResult {
	if tag == "" {
		return r.AutoParseCard(content)
	}
	format, ok := parser.ParseCardFormat(tag)
	if !ok {
		return parser.CardFailure(parser.CardUnknown, fmt.Sprintf(parser.MsgUnsupportedCardTag, tag), "")
	}
	return r.ParseCard(content, format)
}

// FormatInfo describes one registered format
type FormatInfo struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ListBanks returns the registered bank formats in priority order
func (r *Registry) ListBanks() []FormatInfo {
	infos := make([]FormatInfo, len(r.banks))
	for i, p := range r.banks {
		infos[i] = FormatInfo{Type: p.Format().String(), Name: p.Name()}
	}
	return infos
}

// ListCards returns the registered card formats in priority order
func (r *Registry) ListCards() []FormatInfo {
	infos := make([]FormatInfo, len(r.cards))
	for i, p := range r.cards {
		infos[i] = FormatInfo{Type: p.Format().String(), Name: p.Name()}
	}
	return infos
}
