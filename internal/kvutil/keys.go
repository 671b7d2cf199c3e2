package kvutil

import (
	"strconv"
	"strings"

	"github.com/arloliu/rebalance/types"
)

// ValidToken reports whether s can be used as a bucket name or a single
// key token: non-empty and limited to [A-Za-z0-9_-].
func ValidToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isTokenRune(r) {
			return false
		}
	}

	return true
}

// ServerToken renders a server as a single key token: host_port_startcode.
//
// Host bytes outside [A-Za-z0-9-] are escaped as '_' followed by two
// lowercase hex digits, so '_' itself becomes "_5f". Port and start code
// never contain '_', which keeps the token reversible: the last two
// '_'-separated fields are port and start code, the rest is the escaped host.
func ServerToken(s types.ServerInfo) string {
	var sb strings.Builder
	sb.Grow(3*len(s.Host) + 24)
	for i := 0; i < len(s.Host); i++ {
		c := s.Host[i]
		if c != '_' && isTokenRune(rune(c)) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('_')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	sb.WriteByte('_')
	sb.WriteString(strconv.Itoa(s.Port))
	sb.WriteByte('_')
	sb.WriteString(strconv.FormatInt(s.StartCode, 10))

	return sb.String()
}

const hexDigits = "0123456789abcdef"

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}
