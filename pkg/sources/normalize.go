package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"strconv"
	"strings"

	"github.com/carverauto/assetradar/pkg/models"
)

var (
	errNegativeCount = errors.New("count must not be negative")
	errFractional    = errors.New("count must be a whole number")
	errCountRange    = errors.New("count out of range")
)

// Normalize trims a field value and canonicalises MAC and IP addresses.
// An empty result means the value is absent.
func Normalize(field models.AssetField, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	switch field {
	case models.FieldMAC:
		return NormalizeMAC(value)
	case models.FieldIPAddress:
		return NormalizeIP(value)
	default:
		return value
	}
}

// NormalizeMAC renders a MAC made of hex pairs as upper-case, colon
// separated octets ("aa-bb-cc" becomes "AA:BB:CC"). Anything else is only
// trimmed.
func NormalizeMAC(mac string) string {
	mac = strings.TrimSpace(mac)

	stripped := strings.ToUpper(mac)
	stripped = strings.ReplaceAll(stripped, ":", "")
	stripped = strings.ReplaceAll(stripped, "-", "")
	stripped = strings.ReplaceAll(stripped, ".", "")

	if stripped == "" || len(stripped)%2 != 0 || !isHex(stripped) {
		return mac
	}

	var b strings.Builder

	for i := 0; i < len(stripped); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}

		b.WriteString(stripped[i : i+2])
	}

	return b.String()
}

// NormalizeIP renders parseable addresses in canonical form and leaves
// everything else trimmed.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}

	return addr.Unmap().String()
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}

	return true
}

func coerceCount(raw any) (int64, error) {
	var n int64

	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, errFractional
		}

		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if v >= math.MaxInt64 {
			return 0, errCountRange
		}

		if v < 0 {
			return 0, errNegativeCount
		}

		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, err
		}

		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}

		n = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}

	if n < 0 {
		return 0, errNegativeCount
	}

	return n, nil
}
