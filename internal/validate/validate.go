package validate

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{4,20}$`)
	reImage = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)
)

// ID normalizes any textual or numeric identifier to a positive int64.
// Path params, JSON numbers and CLI args all come through here, so ids are
// compared as int64 everywhere else.
func ID(v any) (int64, bool) {
	var (
		n   int64
		err error
	)
	switch x := v.(type) {
	case string:
		// base 10 only; a leading zero must not switch to octal
		n, err = strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		n, err = cast.ToInt64E(x)
	default:
		n, err = cast.ToInt64E(x)
	}
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Required trims s and reports whether anything is left, capped at max bytes.
func Required(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > max {
		return "", false
	}
	return s, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 255 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && rePhone.MatchString(s)
}

// Discount accepts a percentage in [0,100].
func Discount(d float64) bool {
	return d >= 0 && d <= 100
}

// MaxPrice caps a unit price in shillings. MaxPrice times the largest
// Quantity still fits in an int64 many times over.
const MaxPrice int64 = 1_000_000_000_000

func Price(p int64) bool { return p >= 0 && p <= MaxPrice }

// Quantity accepts a positive line quantity with an upper bound against abuse.
func Quantity(q int) bool { return q >= 1 && q <= 1000 }

// Image accepts an http(s) URL or an inline base64 data URI.
func Image(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if reImage.MatchString(s) {
		return s, true
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return s, true
}

// Password enforces a length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 72
}
