package finance

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	brPrinter     = message.NewPrinter(language.BrazilianPortuguese)
	faturaPattern = regexp.MustCompile(`(?i)fatura`)
)

// FormatBRL renders amount in Brazilian currency notation.
func FormatBRL(amount float64) string {
	return brPrinter.Sprintf("R$ %.2f", amount)
}

// ClientFromFileName derives the client from an uploaded file name: the part
// before the first dot, underscores as spaces, the first "fatura" removed.
func ClientFromFileName(fileName string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	base = strings.ReplaceAll(base, "_", " ")
	if loc := faturaPattern.FindStringIndex(base); loc != nil {
		base = base[:loc[0]] + base[loc[1]:]
	}
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return UnknownClient
	}
	return base
}
