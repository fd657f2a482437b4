package cellar

import (
	"regexp"
	"strconv"
	"strings"
)

// Key is the matching key of a wine: its vintage and its normalized name.
type Key struct {
	Vintage int
	Name    string
}

var (
	ratedSuffixRE = regexp.MustCompile(`\s*RATED\s*$`)
	vintageRE     = regexp.MustCompile(`^(\d{4})\s+(.+)$`)
	sizeSuffixRE  = regexp.MustCompile(`(?i)\s*\((\d+(?:\.\d+)?)\s*(ml|l)\)\s*$`)
	spacesRE      = regexp.MustCompile(`\s+`)
)

// ParseWineName splits a ledger wine label like
// "2015 Almaviva (Proprietary Blend) (750ml) RATED" into its vintage (0 when
// absent), bare name and bottle size in ml (0 when absent).
func ParseWineName(text string) (vintage int, name string, sizeML int) {
	name = strings.TrimSpace(text)
	name = ratedSuffixRE.ReplaceAllString(name, "")
	if m := vintageRE.FindStringSubmatch(name); m != nil {
		vintage, _ = strconv.Atoi(m[1])
		name = m[2]
	}
	if m := sizeSuffixRE.FindStringSubmatch(name); m != nil {
		sizeML = parseSize(m[1], m[2])
		name = name[:len(name)-len(m[0])]
	}
	return vintage, strings.TrimSpace(name), sizeML
}

// parseSize converts "1.5","l" into 1500.
func parseSize(amount, unit string) int {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	if strings.EqualFold(unit, "l") {
		v *= 1000
	}
	return int(v + 0.5)
}

var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"`", "'",
	"´", "'", // acute accent
	`"`, "",
)

// NormalizeName returns the canonical form of a wine name used for matching:
// lower case, single spaced, trimmed, with one kind of apostrophe and no
// double quotes. NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(name string) string {
	n := apostrophes.Replace(strings.ToLower(name))
	return strings.TrimSpace(spacesRE.ReplaceAllString(n, " "))
}

// prefixLen is how many leading characters of a cellar name must match the
// external name for a prefix match.
const prefixLen = 20

// prefixMatch reports whether the external (normalized) name starts with the
// first characters of the cellar (normalized) name.
func prefixMatch(external, cellar string) bool {
	if cellar == "" {
		return false
	}
	runes := []rune(cellar)
	if len(runes) > prefixLen {
		runes = runes[:prefixLen]
	}
	return strings.HasPrefix(external, string(runes))
}
