package portal

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ToCSV renders rows under a fixed header order. Cells are quoted only
// when they contain a comma, a double quote, or a newline; embedded
// quotes are doubled. Missing and nil cells render empty, numbers and
// booleans via strconv, and anything non-scalar as its JSON encoding.
// Newline separates rows, so the last row carries no trailing newline.
// No rows yields the empty string, without a header line.
func ToCSV(rows []map[string]any, headers []string) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCell(h))
	}

	for _, row := range rows {
		b.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeCell(formatCell(row[h])))
		}
	}
	return b.String()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		enc, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(enc)
	}
}

func escapeCell(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
