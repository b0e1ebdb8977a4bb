package score

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	honorificRe      = regexp.MustCompile(`(くん|さん|ちゃん|クン|サン|チャン|君)$`)
	guardedHonorific = regexp.MustCompile(`(っ|ッ|ー)(くん|さん|ちゃん|クン|サン|チャン|君)$`)
)

// Normalizer maps the ways people write a player's name onto one canonical name.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer builds a Normalizer from an alias -> canonical name table.
// Canonical names map to themselves.
func NewNormalizer(members map[string]string) *Normalizer {
	aliases := make(map[string]string, len(members)*2)
	for alias, name := range members {
		name = norm.NFKC.String(name)
		aliases[norm.NFKC.String(alias)] = name
		aliases[name] = name
	}
	return &Normalizer{aliases: aliases}
}

// Normalize resolves name against the alias table, stripping an honorific suffix
// and trying hiragana/katakana spellings. Unknown names come back NFKC folded.
func (n *Normalizer) Normalize(name string) string {
	name = norm.NFKC.String(strings.TrimSpace(name))
	if n == nil {
		return name
	}
	if canonical, ok := n.aliases[name]; ok {
		return canonical
	}

	if honorificRe.MatchString(name) && !guardedHonorific.MatchString(name) {
		stripped := honorificRe.ReplaceAllString(name, "")
		if stripped != "" {
			name = stripped
		}
	}
	if canonical, ok := n.aliases[name]; ok {
		return canonical
	}
	if canonical, ok := n.aliases[toHiragana(name)]; ok {
		return canonical
	}
	if canonical, ok := n.aliases[toKatakana(name)]; ok {
		return canonical
	}
	return name
}

// Kana blocks are offset by 0x60 (ぁ U+3041 / ァ U+30A1), 86 characters each.
func toHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x30A1 && r <= 0x30F6 {
			return r - 0x60
		}
		return r
	}, s)
}

func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x3041 && r <= 0x3096 {
			return r + 0x60
		}
		return r
	}, s)
}
