package occfeed

import (
	"log/slog"
	"strings"
)

// Symbol length bounds for an underlying ticker.
const (
	minSymbolLen = 1
	maxSymbolLen = 4
)

// ParseSymbols extracts the deduplicated set of underlying symbols from a
// raw feed body.
//
// Per line: split on tab; only when that yields fewer than two fields and
// the line contains no tab, fall back to whitespace fields. The symbol is
// the second field, stripped to alphanumerics and uppercased, accepted at
// length 1-4. Unparseable lines are skipped. An entirely unparseable body
// yields an empty set, not an error.
func ParseSymbols(content string, logger *slog.Logger) map[string]struct{} {
	if logger == nil {
		logger = slog.Default()
	}

	symbols := make(map[string]struct{})
	lines := strings.Split(strings.TrimSpace(content), "\n")

	for n, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 && !strings.Contains(line, "\t") {
			parts = strings.Fields(line)
		}
		if len(parts) < 2 {
			logger.Debug("skipping feed line: insufficient columns", "line", n+1)
			continue
		}

		symbol := cleanSymbol(parts[1])
		if len(symbol) < minSymbolLen || len(symbol) > maxSymbolLen {
			logger.Debug("skipping invalid symbol", "line", n+1, "raw", parts[1])
			continue
		}

		symbols[symbol] = struct{}{}
	}

	return symbols
}

// cleanSymbol strips non-alphanumeric characters and uppercases the rest.
func cleanSymbol(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}
