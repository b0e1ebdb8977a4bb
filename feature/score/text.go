package score

import (
	"fmt"
	"strconv"
	"strings"
)

// Text renderings accepted by ToText.
const (
	TextSimple = "simple"
	TextDetail = "detail"
)

// ToText renders the result on one line. "simple" shows names and posted
// expressions, "detail" shows rank, score and points with negatives marked ▲.
func (g *GameResult) ToText(kind string) string {
	var b strings.Builder
	for _, s := range g.Seats {
		if kind == TextDetail {
			entry := fmt.Sprintf("[%d位 %s %d点 (%spt)] ", s.Rank, s.Name, s.RawPoints*100, strconv.FormatFloat(s.Point, 'f', 1, 64))
			b.WriteString(strings.ReplaceAll(entry, "-", "▲"))
			continue
		}
		fmt.Fprintf(&b, "[%s %s]", s.Name, s.RawInput)
	}
	fmt.Fprintf(&b, "[%s]", g.Comment)
	return b.String()
}
