package shrtfly

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// hostnamePattern accepts 2 to 127 dot-separated labels of 1-63 letters, digits
// or hyphens. A label never ends with a hyphen, the name never starts with one,
// and the top-level label never starts with a digit.
const hostnamePattern = `^(?!-)(?:[a-z0-9-]{0,62}[a-z0-9]\.){1,126}(?![0-9]+)[a-z0-9]{1,63}$`

var hostnameRegex = func() *regexp2.Regexp {
	re := regexp2.MustCompile(hostnamePattern, regexp2.IgnoreCase)
	re.MatchTimeout = 100 * time.Millisecond
	return re
}()

// ValidateDomain reports whether a single, already trimmed entry is a valid hostname.
func ValidateDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	ok, err := hostnameRegex.MatchString(domain)
	if err != nil {
		// Only a match timeout can land here; treat it as a rejection.
		return false
	}
	return ok
}

// ValidateDomains splits a comma-separated list and partitions its entries.
// Blank entries are dropped silently. Valid entries come back lower-cased,
// invalid ones as typed (trimmed). Input order and duplicates are kept.
func ValidateDomains(raw string) (valid, invalid []string) {
	valid = []string{}
	invalid = []string{}

	for _, piece := range splitList(raw) {
		if ValidateDomain(piece) {
			valid = append(valid, strings.ToLower(piece))
		} else {
			invalid = append(invalid, piece)
		}
	}
	return valid, invalid
}

// SanitizeDomainList returns the comma-joined valid entries of raw, ready to be
// persisted. When some entries are rejected it also returns a ValidationError
// naming all of them; the valid part is still meant to be saved.
func SanitizeDomainList(raw string) (string, *ValidationError) {
	valid, invalid := ValidateDomains(raw)

	var verr *ValidationError
	if len(invalid) > 0 {
		verr = &ValidationError{Setting: OptionDomainList, Invalid: invalid}
	}
	return strings.Join(valid, ","), verr
}

// ParseDomainList splits a stored comma-joined list into trimmed, non-empty entries
// without validating them.
func ParseDomainList(stored string) []string {
	return splitList(stored)
}

func splitList(raw string) []string {
	out := []string{}
	for _, piece := range strings.Split(raw, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// ValidationError collects every rejected domain of one validation pass.
// It is reported to the admin but never blocks saving the valid entries.
type ValidationError struct {
	Setting string
	Invalid []string
}

func (e *ValidationError) Error() string {
	return "Invalid domain names found: " + strings.Join(e.Invalid, ", ")
}
