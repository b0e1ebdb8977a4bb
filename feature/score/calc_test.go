package score

import (
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(raw ...string) *RawFields {
	names := []string{"A", "B", "C", "D"}
	f := &RawFields{}
	for i, r := range raw {
		f.Seats = append(f.Seats, RawSeat{Name: names[i], Input: r})
	}
	return f
}

func ranksOf(g *GameResult) []int {
	out := make([]int, len(g.Seats))
	for i, s := range g.Seats {
		out[i] = s.Rank
	}
	return out
}

func pointsOf(g *GameResult) []float64 {
	out := make([]float64, len(g.Seats))
	for i, s := range g.Seats {
		out[i] = s.Point
	}
	return out
}

func TestCalc_SeatOrderTieBreak(t *testing.T) {
	g, err := Calc(fieldsOf("300", "250", "200", "250"), DefaultRule(4))
	require.NoError(t, err)

	assert.True(t, g.HasValidData())
	assert.Equal(t, []int{1, 2, 4, 3}, ranksOf(g))
	assert.Equal(t, []float64{50.0, 5.0, -40.0, -15.0}, pointsOf(g))
	assert.Equal(t, 0, g.Deposit)
}

func TestCalc_DrawSplit(t *testing.T) {
	rule := DefaultRule(4)
	rule.DrawSplit = true

	tests := []struct {
		name   string
		raw    []string
		ranks  []int
		points []float64
	}{
		{"AllTied", []string{"250", "250", "250", "250"}, []int{1, 1, 1, 1}, []float64{0, 0, 0, 0}},
		{"TopTwoAndBottomTwo", []string{"300", "300", "200", "200"}, []int{1, 1, 3, 3}, []float64{30, 30, -30, -30}},
		{"TopThree", []string{"270", "270", "270", "190"}, []int{1, 1, 1, 4}, []float64{15, 13, 13, -41}},
		{"MiddleTwo", []string{"200", "250", "250", "300"}, []int{4, 2, 2, 1}, []float64{-40, -5, -5, 50}},
		{"NoTie", []string{"400", "300", "200", "100"}, []int{1, 2, 3, 4}, []float64{60, 10, -20, -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Calc(fieldsOf(tt.raw...), rule)
			require.NoError(t, err)
			assert.Equal(t, tt.ranks, ranksOf(g))
			assert.Equal(t, tt.points, pointsOf(g))
			assert.Equal(t, 0, g.Deposit)
		})
	}
}

func TestSplitPoints(t *testing.T) {
	assert.Equal(t, []int{5, 5, 5, 5}, splitPoints([]int{50, 10, -10, -30}))
	assert.Equal(t, []int{18, 16, 16}, splitPoints([]int{50, 10, -10}))
	assert.Equal(t, []int{-20, -21}, splitPoints([]int{-10, -31}))
	assert.Equal(t, []int{-10, -10, -10}, splitPoints([]int{10, -10, -30}))
	assert.Equal(t, []int{4, 3}, splitPoints([]int{7, 0}))
}

func TestCalc_Deposit(t *testing.T) {
	g, err := Calc(fieldsOf("300", "250", "200", "240"), DefaultRule(4))
	require.NoError(t, err)
	assert.Equal(t, 10, g.Deposit)
	assert.Equal(t, 990, g.RawSum())
	assert.True(t, g.HasValidData())
}

func TestCalc_ThreePlayer(t *testing.T) {
	f := &RawFields{Seats: []RawSeat{{"A", "400"}, {"B", "350"}, {"C", "300"}}}
	g, err := Calc(f, DefaultRule(3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ranksOf(g))
	assert.Equal(t, []float64{45, -5, -40}, pointsOf(g))
	assert.Equal(t, 0, g.Deposit)
}

func TestCalc_OkaOffTens(t *testing.T) {
	rule := DefaultRule(4)
	rule.ReturnPoint = 305

	g, err := Calc(fieldsOf("300", "250", "200", "250"), rule)
	require.NoError(t, err)
	// 55 * 4 / 10 = 22 goes to first place
	assert.Equal(t, []float64{51.5, 4.5, -40.5, -15.5}, pointsOf(g))

	total := 0.0
	for _, p := range pointsOf(g) {
		total += p
	}
	assert.InDelta(t, 0, total, 1e-9)
}

func TestCalc_Incomplete(t *testing.T) {
	f := fieldsOf("300", "250", "200", "250")
	f.Seats[2].Name = ""

	g, err := Calc(f, DefaultRule(4))
	require.NoError(t, err)
	assert.False(t, g.HasValidData())
	assert.Equal(t, []int{0, 0, 0, 0}, ranksOf(g))
	assert.Equal(t, 0, g.Deposit)

	// three seats against a four-seat rule
	g, err = Calc(fieldsOf("300", "250", "200"), DefaultRule(4))
	require.NoError(t, err)
	assert.False(t, g.HasValidData())
}

func TestCalc_EvaluationFailure(t *testing.T) {
	_, err := Calc(fieldsOf("300", "250", "200", "25-"), DefaultRule(4))
	assert.ErrorIs(t, err, ErrEvaluation)
}

func TestGameResult_Recalc(t *testing.T) {
	g, err := Calc(fieldsOf("300", "250", "200", "250"), DefaultRule(4))
	require.NoError(t, err)

	g.Seats[3].RawInput = "260"
	g.Seats[2].RawInput = "190"
	require.NoError(t, g.Calc())
	assert.Equal(t, []int{1, 3, 4, 2}, ranksOf(g))
	assert.Equal(t, 0, g.Deposit)
}

func TestCalc_ZeroSumProperty(t *testing.T) {
	for seed := 1; seed <= 200; seed++ {
		f := gofakeit.New(uint64(seed))
		rule := DefaultRule(4)
		rule.DrawSplit = f.Bool()

		choices := []int{-50, 0, 100, 200, 250, 300, 450}
		raw := make([]string, 4)
		sum := 0
		for i := 0; i < 3; i++ {
			v := choices[f.IntRange(0, len(choices)-1)]
			if f.Bool() {
				v = f.IntRange(-100, 600)
			}
			raw[i] = strconv.Itoa(v)
			sum += v
		}
		raw[3] = strconv.Itoa(rule.OriginPoint*4 - sum)

		g, err := Calc(fieldsOf(raw...), rule)
		require.NoError(t, err)
		require.Equal(t, 0, g.Deposit)

		total := 0.0
		for _, p := range pointsOf(g) {
			total += p
		}
		assert.InDelta(t, 0, total, 1e-9, "seed=%d raw=%v split=%v", seed, raw, rule.DrawSplit)
	}
}
