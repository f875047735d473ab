package lockfile

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FormatValue serializes a record value on one line the way bun does:
// `["a@1.0.0", "", { "dependencies": { "b": "^1.0.0" } }, "sha512-…"]`.
func FormatValue(v gjson.Result) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v gjson.Result) {
	switch {
	case v.IsArray():
		sb.WriteByte('[')
		first := true
		v.ForEach(func(_, item gjson.Result) bool {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			writeValue(sb, item)
			return true
		})
		sb.WriteByte(']')
	case v.IsObject():
		empty := true
		v.ForEach(func(key, item gjson.Result) bool {
			if empty {
				sb.WriteString("{ ")
			} else {
				sb.WriteString(", ")
			}
			empty = false
			writeString(sb, key.String())
			sb.WriteString(": ")
			writeValue(sb, item)
			return true
		})
		if empty {
			sb.WriteString("{}")
		} else {
			sb.WriteString(" }")
		}
	case v.Type == gjson.String:
		writeString(sb, v.Str)
	default:
		sb.WriteString(v.Raw)
	}
}

const hexDigits = "0123456789abcdef"

// writeString quotes s with the minimal JSON escaping bun uses: no HTML
// escaping and no escaping of non-ASCII text.
func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0xf])
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}
