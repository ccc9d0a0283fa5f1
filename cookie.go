package resolve

import (
	"net/url"
	"strings"
)

// parseCookies parses a raw Cookie header value into a name → value map.
//
// Pairs are split on ';' and on the first '=' only, so values may contain
// '=' characters. One layer of surrounding double quotes is stripped, and
// values are percent-decoded with a fallback to the raw value when decoding
// fails. Bare tokens without '=' (an HttpOnly flag leaking into the value
// position, say) are skipped. The last occurrence of a repeated name wins.
func parseCookies(raw string) map[string]string {
	cookies := make(map[string]string)
	for pair := range strings.SplitSeq(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}
