// Package configkeys validates gaianet config key/value pairs before they are
// turned into commands.
package configkeys

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule is the validation policy bound to one config key. The set of rules is
// closed; check is unexported so only this package can add variants.
type Rule interface {
	check(key, value string) *ValidationError
	fmt.Stringer
}

// URLOrLocalFile accepts an absolute http(s) URL or an existing regular file
// under BaseDir given by absolute path.
type URLOrLocalFile struct {
	BaseDir string
}

// NonNegativeInteger accepts base-10 integers in [0, 2^32).
type NonNegativeInteger struct{}

// PositiveInteger accepts base-10 integers in [1, 2^32).
type PositiveInteger struct{}

// BoundedFloat accepts floats in [Min, Max].
type BoundedFloat struct {
	Min, Max float64
}

// EnumOf accepts exactly one of Values.
type EnumOf struct {
	Values []string
}

// ExistingPath accepts any path that exists on the filesystem.
type ExistingPath struct{}

// FreeText accepts anything.
type FreeText struct{}

func (r URLOrLocalFile) String() string   { return fmt.Sprintf("url-or-local-file(%s)", r.BaseDir) }
func (NonNegativeInteger) String() string { return "non-negative-integer" }
func (PositiveInteger) String() string    { return "positive-integer" }
func (r BoundedFloat) String() string     { return fmt.Sprintf("float[%g,%g]", r.Min, r.Max) }
func (r EnumOf) String() string           { return "one-of(" + strings.Join(r.Values, "|") + ")" }
func (ExistingPath) String() string       { return "existing-path" }
func (FreeText) String() string           { return "free-text" }

func (r URLOrLocalFile) check(key, value string) *ValidationError {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		u, err := url.Parse(value)
		if err != nil {
			return newError(InvalidURLOrPath, key, value, "malformed URL")
		}
		if !u.IsAbs() || u.Host == "" {
			return newError(InvalidURLOrPath, key, value, "URL must be absolute with a host")
		}
		return nil
	}

	if !filepath.IsAbs(value) {
		return newError(InvalidURLOrPath, key, value, "local file must be an absolute path")
	}
	path := filepath.Clean(value)
	if !underDir(r.BaseDir, path) {
		return newError(InvalidURLOrPath, key, value, "local file must be under "+r.BaseDir)
	}
	st, err := os.Stat(path)
	if err != nil {
		return newError(InvalidURLOrPath, key, value, "local file does not exist")
	}
	if st.IsDir() {
		return newError(InvalidURLOrPath, key, value, "local path is a directory")
	}
	return nil
}

// underDir reports whether path lies below dir. Both are matched as slash
// paths against "<dir>/**" with glob metacharacters in dir escaped.
func underDir(dir, path string) bool {
	if dir == "" {
		return false
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	pattern := escapeGlob(filepath.ToSlash(base)) + "/**"
	ok, err := doublestar.Match(pattern, filepath.ToSlash(path))
	return err == nil && ok && path != base
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseUint32(key, value string) (uint64, *ValidationError) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, newError(InvalidNumber, key, value, "expected a non-negative base-10 integer")
	}
	return n, nil
}

func (NonNegativeInteger) check(key, value string) *ValidationError {
	_, verr := parseUint32(key, value)
	return verr
}

func (PositiveInteger) check(key, value string) *ValidationError {
	n, verr := parseUint32(key, value)
	if verr != nil {
		return verr
	}
	if n == 0 {
		return newError(InvalidNumber, key, value, "must be greater than 0")
	}
	return nil
}

// decimalFloat matches plain decimal float literals. Hex floats, digit
// separators and surrounding whitespace are rejected.
var decimalFloat = regexp.MustCompile(`^[+-]?(?:(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|(?i:nan|inf|infinity))$`)

func (r BoundedFloat) check(key, value string) *ValidationError {
	if !decimalFloat.MatchString(value) {
		return newError(InvalidNumber, key, value, "expected a decimal floating point number")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) {
		return newError(InvalidNumber, key, value, "expected a floating point number")
	}
	// NaN fails both comparisons.
	if !(f >= r.Min && f <= r.Max) {
		return newError(OutOfRange, key, value, fmt.Sprintf("must be between %g and %g", r.Min, r.Max))
	}
	return nil
}

func (r EnumOf) check(key, value string) *ValidationError {
	if slices.Contains(r.Values, value) {
		return nil
	}
	return newError(InvalidEnumValue, key, value, "must be one of "+strings.Join(r.Values, ", "))
}

func (ExistingPath) check(key, value string) *ValidationError {
	if value == "" {
		return newError(PathNotFound, key, value, "empty path")
	}
	if _, err := os.Stat(value); err != nil {
		return newError(PathNotFound, key, value, "")
	}
	return nil
}

func (FreeText) check(string, string) *ValidationError { return nil }
