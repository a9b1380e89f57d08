package edbexport

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical text forms. Every Format function has a Parse counterpart that
// restores the identical value.

const (
	dateTimeLayout       = "2006-01-02T15:04:05.999999999"
	dateTimeOffsetLayout = "2006-01-02T15:04:05.999999999-07:00"

	floatPosInf = "INF"
	floatNegInf = "-INF"
	floatNaN    = "NaN"
)

func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func ParseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func FormatInt(v int64) string   { return strconv.FormatInt(v, 10) }
func FormatUint(v uint64) string { return strconv.FormatUint(v, 10) }

func ParseInt(s string, bits int) (int64, error) {
	return strconv.ParseInt(s, 10, bits)
}

func ParseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 10, bits)
}

// FormatFloat returns the shortest text that parses back to the same bits.
// Infinities and NaN use the XML Schema spellings.
func FormatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return floatNaN
	case math.IsInf(v, 1):
		return floatPosInf
	case math.IsInf(v, -1):
		return floatNegInf
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

func ParseFloat(s string, bits int) (float64, error) {
	switch s {
	case floatNaN:
		return math.NaN(), nil
	case floatPosInf:
		return math.Inf(1), nil
	case floatNegInf:
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, bits)
}

func FormatDecimal(d Decimal) string {
	var digits string
	neg := false
	if d.Unscaled != nil {
		neg = d.Unscaled.Sign() < 0
		digits = new(big.Int).Abs(d.Unscaled).String()
	} else {
		digits = "0"
	}
	if d.Scale > 0 {
		scale := int(d.Scale)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	} else if d.Scale < 0 && digits != "0" {
		digits += strings.Repeat("0", -int(d.Scale))
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func ParseDecimal(s string) (Decimal, error) {
	body := s
	neg := false
	if strings.HasPrefix(body, "-") {
		neg, body = true, body[1:]
	}
	intPart, fracPart, _ := strings.Cut(body, ".")
	if intPart == "" || strings.ContainsAny(fracPart, ".") {
		return Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	for _, c := range intPart + fracPart {
		if c < '0' || c > '9' {
			return Decimal{}, fmt.Errorf("invalid decimal %q", s)
		}
	}
	u, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	if neg {
		u.Neg(u)
	}
	return Decimal{Unscaled: u, Scale: int32(len(fracPart))}, nil
}

// FormatDateTime writes wall clock time with up to nanosecond precision,
// suffixed by Z for UTC values. Times in zones other than Local are
// converted to UTC, so the text always names a single instant.
func FormatDateTime(t time.Time) string {
	if loc := t.Location(); loc != time.Local && loc != time.UTC {
		t = t.UTC()
	}
	if t.Location() == time.UTC {
		return t.Format(dateTimeLayout) + "Z"
	}
	return t.Format(dateTimeLayout)
}

// ParseDateTime parses FormatDateTime output. Values without the Z suffix
// are interpreted in loc (time.Local when nil).
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if rest, ok := strings.CutSuffix(s, "Z"); ok {
		return time.ParseInLocation(dateTimeLayout, rest, time.UTC)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateTimeLayout, s, loc)
}

// FormatDateTimeOffset always writes a numeric offset, including +00:00.
func FormatDateTimeOffset(t time.Time) string {
	return t.Format(dateTimeOffsetLayout)
}

func ParseDateTimeOffset(s string) (time.Time, error) {
	return time.Parse(dateTimeOffsetLayout, s)
}

// FormatTimeSpan writes [-][d.]hh:mm:ss[.fffffffff], trailing fraction zeros
// trimmed.
func FormatTimeSpan(d time.Duration) string {
	var buf []byte
	u := uint64(d)
	if d < 0 {
		buf = append(buf, '-')
		u = -u
	}
	const day = uint64(24 * time.Hour)
	days := u / day
	u %= day
	if days > 0 {
		buf = strconv.AppendUint(buf, days, 10)
		buf = append(buf, '.')
	}
	hours := u / uint64(time.Hour)
	u %= uint64(time.Hour)
	minutes := u / uint64(time.Minute)
	u %= uint64(time.Minute)
	seconds := u / uint64(time.Second)
	nanos := u % uint64(time.Second)

	buf = appendPadded(buf, hours, 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, minutes, 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, seconds, 2)
	if nanos != 0 {
		frac := appendPadded(nil, nanos, 9)
		for frac[len(frac)-1] == '0' {
			frac = frac[:len(frac)-1]
		}
		buf = append(buf, '.')
		buf = append(buf, frac...)
	}
	return string(buf)
}

func ParseTimeSpan(s string) (time.Duration, error) {
	body := s
	neg := false
	if strings.HasPrefix(body, "-") {
		neg, body = true, body[1:]
	}
	var days uint64
	clock := body
	if dot := strings.IndexByte(body, '.'); dot >= 0 && dot < strings.IndexByte(body, ':') {
		d, err := strconv.ParseUint(body[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time span %q: %w", s, err)
		}
		days, clock = d, body[dot+1:]
	}
	clock, frac, _ := strings.Cut(clock, ".")
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time span %q", s)
	}
	var hms [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time span %q: %w", s, err)
		}
		hms[i] = v
	}
	var nanos uint64
	if frac != "" {
		if len(frac) > 9 {
			return 0, fmt.Errorf("invalid time span %q: fraction too long", s)
		}
		v, err := strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time span %q: %w", s, err)
		}
		nanos = v
	}
	u := days*uint64(24*time.Hour) + hms[0]*uint64(time.Hour) + hms[1]*uint64(time.Minute) + hms[2]*uint64(time.Second) + nanos
	if neg {
		return -time.Duration(u), nil
	}
	return time.Duration(u), nil
}

func FormatGUID(id GUID) string { return uuid.UUID(id).String() }

func ParseGUID(s string) (uuid.UUID, error) { return uuid.Parse(s) }

func appendPadded(buf []byte, v uint64, width int) []byte {
	start := len(buf)
	buf = strconv.AppendUint(buf, v, 10)
	if n := len(buf) - start; n < width {
		pad := width - n
		buf = append(buf, make([]byte, pad)...)
		copy(buf[start+pad:], buf[start:start+n])
		for i := 0; i < pad; i++ {
			buf[start+i] = '0'
		}
	}
	return buf
}
