// Package naming generates, parses and versions filed document codes of the
// form SHORTCODE-TYPE-{INT|EXT}-INITIALS-Vmajor.minor-YYYY-MM-DD.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultVersion is assigned to the first document of a version family.
	DefaultVersion = "V1.0"

	MarkerInternal = "INT"
	MarkerExternal = "EXT"

	maxShortcodeLen    = 10
	maxInitialsLen     = 3
	maxFallbackTypeLen = 8
	fallbackType       = "DOC"
	dateLayout         = "2006-01-02"
)

var (
	versionPattern = regexp.MustCompile(`^V(\d+)\.(\d+)$`)
	nonAlnum       = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// typeEntry maps a lowercase category synonym to its type abbreviation.
type typeEntry struct {
	pattern string
	abbrev  string
}

// typeAbbreviations is ordered: fuzzy matching takes the first entry that
// matches, so more specific phrases come before generic ones.
var typeAbbreviations = []typeEntry{
	{"red book valuation", "APPRAISAL"},
	{"rics valuation", "APPRAISAL"},
	{"valuation report", "APPRAISAL"},
	{"valuation", "APPRAISAL"},
	{"appraisal", "APPRAISAL"},
	{"initial monitoring report", "IMR"},
	{"monitoring report", "MONREPORT"},
	{"quantity surveyor report", "QSREPORT"},
	{"cost report", "COSTREPORT"},
	{"term sheet", "TERMSHEET"},
	{"indicative terms", "TERMSHEET"},
	{"facility letter", "FACILITY"},
	{"facility agreement", "FACILITY"},
	{"loan agreement", "LOANAGMT"},
	{"loan application", "APPLICATION"},
	{"credit paper", "CREDITPAPER"},
	{"credit memo", "CREDITPAPER"},
	{"track record", "TRACKRECORD"},
	{"curriculum vitae", "CV"},
	{"cv", "CV"},
	{"bank statement", "BANKSTMT"},
	{"proof of address", "POA"},
	{"utility bill", "POA"},
	{"passport", "ID"},
	{"driving licence", "ID"},
	{"identity document", "ID"},
	{"kyc", "KYC"},
	{"assets and liabilities", "ALSTMT"},
	{"personal guarantee", "GUARANTEE"},
	{"guarantee", "GUARANTEE"},
	{"planning permission", "PLANNING"},
	{"planning", "PLANNING"},
	{"building contract", "BUILDCON"},
	{"schedule of works", "SOW"},
	{"title register", "TITLE"},
	{"title plan", "TITLE"},
	{"certificate of title", "TITLE"},
	{"insurance", "INSURANCE"},
	{"company accounts", "ACCOUNTS"},
	{"accounts", "ACCOUNTS"},
	{"tax return", "TAXRETURN"},
	{"appraisal model", "DEVMODEL"},
	{"development appraisal", "DEVMODEL"},
	{"cashflow", "CASHFLOW"},
	{"floor plans", "PLANS"},
	{"drawings", "PLANS"},
	{"photographs", "PHOTOS"},
	{"email", "CORRESPONDENCE"},
	{"correspondence", "CORRESPONDENCE"},
	{"invoice", "INVOICE"},
}

// TypeAbbreviation maps a free-text category onto its document type code.
// Exact synonym matches win, then the first table entry contained in the
// category (or containing it), then a sanitized form of the category itself.
func TypeAbbreviation(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))

	if key != "" {
		for _, e := range typeAbbreviations {
			if e.pattern == key {
				return e.abbrev
			}
		}
		for _, e := range typeAbbreviations {
			if strings.Contains(key, e.pattern) || strings.Contains(e.pattern, key) {
				return e.abbrev
			}
		}
	}

	fallback := strings.ToUpper(nonAlnum.ReplaceAllString(category, ""))
	if len(fallback) > maxFallbackTypeLen {
		fallback = fallback[:maxFallbackTypeLen]
	}
	if fallback == "" {
		return fallbackType
	}
	return fallback
}

// GenerateInput carries the fields that make up a document code.
type GenerateInput struct {
	Shortcode  string
	Category   string
	IsInternal bool
	Initials   string
	Version    string    // defaults to DefaultVersion
	Date       time.Time // defaults to now
	// BasePattern, when set, replaces the one derived from Shortcode,
	// Category and IsInternal so a new version keeps its family's prefix.
	BasePattern string
}

// Generate assembles a document code.
func Generate(in GenerateInput) string {
	version := in.Version
	if version == "" {
		version = DefaultVersion
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	base := in.BasePattern
	if base == "" {
		base = BasePattern(in.Shortcode, in.Category, in.IsInternal)
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		base,
		normalizeInitials(in.Initials),
		version,
		date.Format(dateLayout),
	)
}

// BasePattern returns SHORTCODE-TYPE-{INT|EXT}, the key shared by every
// version of the same logical document.
func BasePattern(shortcode, category string, isInternal bool) string {
	return fmt.Sprintf("%s-%s-%s",
		normalizeShortcode(shortcode),
		TypeAbbreviation(category),
		marker(isInternal),
	)
}

// ShortcodeFromName derives a shortcode from a client or project name by
// keeping alphanumerics only.
func ShortcodeFromName(name string) string {
	return normalizeShortcode(name)
}

// ParsedName is the decomposition of a document code.
type ParsedName struct {
	Shortcode  string `json:"shortcode"`
	Type       string `json:"type"`
	IsInternal bool   `json:"is_internal"`
	Initials   string `json:"initials"`
	Version    string `json:"version"`
	Date       string `json:"date"`
}

// Parse decomposes a document code. The last three segments are the date,
// then version, initials and the INT/EXT marker counted from the end; the
// first segment is the shortcode and everything between it and the marker is
// the type. Generated shortcodes never contain hyphens.
func Parse(name string) (*ParsedName, bool) {
	parts := strings.Split(name, "-")
	n := len(parts)
	if n < 8 {
		return nil, false
	}

	version := parts[n-4]
	if !strings.HasPrefix(version, "V") {
		return nil, false
	}

	var internal bool
	switch parts[n-6] {
	case MarkerInternal:
		internal = true
	case MarkerExternal:
		internal = false
	default:
		return nil, false
	}

	return &ParsedName{
		Shortcode:  parts[0],
		Type:       strings.Join(parts[1:n-6], "-"),
		IsInternal: internal,
		Initials:   parts[n-5],
		Version:    version,
		Date:       strings.Join(parts[n-3:], "-"),
	}, true
}

// IncrementVersion bumps a Vmajor.minor version. A significant change bumps
// the major and resets the minor. Unparsable input is treated as V1.0.
func IncrementVersion(current string, significant bool) string {
	major, minor, ok := parseVersion(current)
	if !ok {
		major, minor = 1, 0
	}
	return bump(major, minor, significant)
}

// NextVersion increments from the highest parsable version in existing, not
// from whichever version a caller last saw. An empty family starts at V1.0.
func NextVersion(existing []string, significant bool) string {
	if len(existing) == 0 {
		return DefaultVersion
	}

	maxMajor, maxMinor := 1, 0
	found := false
	for _, v := range existing {
		major, minor, ok := parseVersion(v)
		if !ok {
			continue
		}
		if !found || major > maxMajor || (major == maxMajor && minor > maxMinor) {
			maxMajor, maxMinor = major, minor
			found = true
		}
	}
	return bump(maxMajor, maxMinor, significant)
}

func bump(major, minor int, significant bool) string {
	if significant {
		return fmt.Sprintf("V%d.0", major+1)
	}
	return fmt.Sprintf("V%d.%d", major, minor+1)
}

func parseVersion(v string) (major, minor int, ok bool) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, 0, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// normalizeShortcode keeps alphanumerics only so the shortcode is always
// exactly one segment of the code.
func normalizeShortcode(s string) string {
	return truncateRunes(strings.ToUpper(nonAlnum.ReplaceAllString(s, "")), maxShortcodeLen)
}

func normalizeInitials(s string) string {
	return truncateRunes(strings.ToUpper(strings.TrimSpace(s)), maxInitialsLen)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func marker(isInternal bool) string {
	if isInternal {
		return MarkerInternal
	}
	return MarkerExternal
}
