package score

import (
	"sort"
	"strconv"
)

// Calc builds a GameResult from parsed fields and calculates it under rule.
// A posting with a missing name or expression yields an incomplete result
// (HasValidData false) rather than an error. An expression that cannot be
// evaluated returns ErrEvaluation.
func Calc(fields *RawFields, rule Rule) (*GameResult, error) {
	g := &GameResult{
		Comment:     fields.Comment,
		RuleVersion: rule.Version,
		OriginPoint: rule.OriginPoint,
		ReturnPoint: rule.ReturnPoint,
		RankPoint:   append([]int(nil), rule.RankPoint...),
		DrawSplit:   rule.DrawSplit,
		Seats:       make([]SeatScore, len(fields.Seats)),
	}
	for i, s := range fields.Seats {
		g.Seats[i] = SeatScore{Name: s.Name, RawInput: s.Input}
	}
	if err := g.Calc(); err != nil {
		return nil, err
	}
	return g, nil
}

// Calc (re)derives raw points, ranks, points and deposit from the seat inputs
// and the rule fields stored on the result.
func (g *GameResult) Calc() error {
	n := len(g.Seats)
	for i := range g.Seats {
		g.Seats[i].RawPoints, g.Seats[i].Point, g.Seats[i].Rank = 0, 0, 0
	}
	g.Deposit = 0

	if n == 0 || n != len(g.RankPoint) {
		return nil
	}
	for _, s := range g.Seats {
		if s.Name == "" || s.RawInput == "" {
			return nil
		}
	}

	raw := make([]int, n)
	for i, s := range g.Seats {
		v, err := NormalizeExpression(s.RawInput)
		if err != nil {
			return err
		}
		raw[i] = v
	}

	// position: 0-based place by raw score, ties broken by seat order
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return raw[order[a]] > raw[order[b]] })
	position := make([]int, n)
	for p, seat := range order {
		position[seat] = p
	}

	table := append([]int(nil), g.RankPoint...)
	// oka: the return/origin gap of every seat goes to first place
	table[0] += (g.ReturnPoint - g.OriginPoint) * n / 10

	rank := make([]int, n)
	if g.DrawSplit {
		// tied seats share the best rank of their group
		for i := range rank {
			rank[i] = 1
			for j := range raw {
				if raw[j] > raw[i] {
					rank[i]++
				}
			}
		}
		splitTiedGroups(table, rank)
	} else {
		for i := range rank {
			rank[i] = position[i] + 1
		}
	}

	sum := 0
	for i := range g.Seats {
		g.Seats[i].RawPoints = raw[i]
		g.Seats[i].Rank = rank[i]
		g.Seats[i].Point = round1(float64(raw[i]-g.ReturnPoint)/10 + float64(table[position[i]]))
		sum += raw[i]
	}
	g.Deposit = g.OriginPoint*n - sum
	return nil
}

// splitTiedGroups evens out the rank point table across every group of seats
// sharing a rank. The group occupies table[rank-1 : rank-1+size].
func splitTiedGroups(table, rank []int) {
	size := make(map[int]int)
	for _, r := range rank {
		size[r]++
	}
	for r, count := range size {
		if count < 2 {
			continue
		}
		start := r - 1
		copy(table[start:start+count], splitPoints(table[start:start+count]))
	}
}

// splitPoints shares a slice of the rank point table evenly. The remainder goes to
// the first share; a negative pool rounds every share down first.
func splitPoints(points []int) []int {
	n := len(points)
	sum := 0
	for _, p := range points {
		sum += p
	}
	out := make([]int, n)
	for i := range out {
		out[i] = sum / n
	}
	if rem := ((sum % n) + n) % n; rem != 0 {
		if sum < 0 {
			for i := range out {
				out[i]--
			}
		}
		out[0] += rem
	}
	return out
}

// round1 rounds through the one-decimal text form to drop binary float noise.
func round1(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return f
}
