package schema

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// mojibake maps UTF-8 text that was decoded as Windows-1252 back to the
// intended character. Longer sequences come first so the replacer never
// splits them.
var mojibake = strings.NewReplacer(
	"Ã¡", "á",
	"Ã©", "é",
	"Ã\u00ad", "í",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã±", "ñ",
	"Ã¼", "ü",
	"Ã\u0081", "Á",
	"Ã‰", "É",
	"Ã\u008d", "Í",
	"Ã“", "Ó",
	"Ãš", "Ú",
	"Ã‘", "Ñ",
	"Ãœ", "Ü",
	"Â¿", "¿",
	"Â¡", "¡",
	"Â°", "°",
	"Âº", "º",
	"Âª", "ª",
	"â‚¬", "€",
)

// RepairText fixes encoding damage in a single text value: invalid UTF-8 is
// decoded as Windows-1252, known mojibake is substituted, leftovers get a
// Windows-1252 round trip, and the result is NFC-normalized and trimmed.
// It never fails; when a repair step cannot apply the input is kept.
func RepairText(s string) string {
	if !utf8.ValidString(s) {
		if dec, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = dec
		} else {
			s = strings.ToValidUTF8(s, "")
		}
	}
	s = mojibake.Replace(s)
	if strings.ContainsAny(s, "ÃÂ") {
		s = roundTrip(s)
	}
	return strings.TrimSpace(norm.NFC.String(s))
}

// roundTrip re-encodes s as Windows-1252 and keeps the result only if those
// bytes are valid UTF-8, i.e. s really was double-decoded text.
func roundTrip(s string) string {
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) {
		return s
	}
	return raw
}

// RepairCell applies RepairText to string cells; other values, nil included,
// pass through.
func RepairCell(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return RepairText(s)
}
