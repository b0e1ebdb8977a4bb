package score

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const pairPattern = `([^0-9()+\-]+)([0-9+\-]+)`

// NormalizeText folds full-width characters to ASCII (NFKC), maps U+2212 to '-'
// and removes every whitespace character.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\u2212", "-")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

type postingPatterns struct {
	leading       *regexp.Regexp
	trailing      *regexp.Regexp
	leadingNoted  *regexp.Regexp
	trailingNoted *regexp.Regexp
}

var patternCache sync.Map // keyword -> *postingPatterns

func patternsFor(keyword string) *postingPatterns {
	if p, ok := patternCache.Load(keyword); ok {
		return p.(*postingPatterns)
	}
	kw := regexp.QuoteMeta(NormalizeText(keyword))
	pairs := strings.Repeat(pairPattern, 4)
	p := &postingPatterns{
		leading:       regexp.MustCompile(`^` + kw + pairs + `$`),
		trailing:      regexp.MustCompile(`^` + pairs + kw + `$`),
		leadingNoted:  regexp.MustCompile(`^` + kw + `\((.+?)\)` + pairs + `$`),
		trailingNoted: regexp.MustCompile(`^` + pairs + kw + `\((.+?)\)$`),
	}
	actual, _ := patternCache.LoadOrStore(keyword, p)
	return actual.(*postingPatterns)
}

// ParsePosting recognises a score posting. The keyword may lead or trail the four
// (name, expression) pairs and may carry a parenthesised comment. The second return
// value is false when text is not a score posting.
func ParsePosting(text, keyword string) (*RawFields, bool) {
	if keyword == "" {
		return nil, false
	}
	s := NormalizeText(text)
	p := patternsFor(keyword)

	var groups []string
	comment := ""
	if m := p.leading.FindStringSubmatch(s); m != nil {
		groups = m[1:9]
	} else if m := p.trailing.FindStringSubmatch(s); m != nil {
		groups = m[1:9]
	} else if m := p.leadingNoted.FindStringSubmatch(s); m != nil {
		comment = m[1]
		groups = m[2:10]
	} else if m := p.trailingNoted.FindStringSubmatch(s); m != nil {
		groups = m[1:9]
		comment = m[9]
	} else {
		return nil, false
	}

	fields := &RawFields{Comment: comment, Seats: make([]RawSeat, 0, 4)}
	for i := 0; i < len(groups); i += 2 {
		fields.Seats = append(fields.Seats, RawSeat{
			Name:  trimSeparators(groups[i]),
			Input: groups[i+1],
		})
	}
	return fields, true
}

// trimSeparators drops name/score separators such as "name:" or "name=".
func trimSeparators(name string) string {
	return strings.TrimRight(name, ":=,、。")
}

// ParseRemarks reads a remark posting: the remarks word followed by whitespace
// separated name/matter pairs. Duplicate pairs are dropped and a trailing name
// without a matter is ignored.
func ParseRemarks(text, word string) []RemarkPair {
	fields := strings.Fields(norm.NFKC.String(text))
	if word == "" || len(fields) == 0 || fields[0] != norm.NFKC.String(word) {
		return nil
	}

	var pairs []RemarkPair
	seen := make(map[RemarkPair]struct{})
	args := fields[1:]
	for i := 0; i+1 < len(args); i += 2 {
		pair := RemarkPair{Name: args[i], Matter: args[i+1]}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}
