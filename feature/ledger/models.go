package ledger

import (
	"strings"
	"time"

	"score-ledger/core/utils"
	"score-ledger/feature/score"
)

// seatColumns is one seat of the result table, stored under a p1_..p4_ prefix.
type seatColumns struct {
	Name   string  `gorm:"column:name;size:64"`
	Str    string  `gorm:"column:str;size:64"`
	Rpoint int     `gorm:"column:rpoint"`
	Point  float64 `gorm:"column:point"`
	Rank   int     `gorm:"column:rank"`
}

// ResultRow is the persisted form of a GameResult.
type ResultRow struct {
	TS          string      `gorm:"column:ts;primaryKey;size:32"`
	Playtime    time.Time   `gorm:"column:playtime;index"`
	P1          seatColumns `gorm:"embedded;embeddedPrefix:p1_"`
	P2          seatColumns `gorm:"embedded;embeddedPrefix:p2_"`
	P3          seatColumns `gorm:"embedded;embeddedPrefix:p3_"`
	P4          seatColumns `gorm:"embedded;embeddedPrefix:p4_"`
	Deposit     int         `gorm:"column:deposit"`
	RpointSum   int         `gorm:"column:rpoint_sum"`
	Comment     string      `gorm:"column:comment;size:255"`
	RuleVersion string      `gorm:"column:rule_version;size:32;index"`
	OriginPoint int         `gorm:"column:origin_point"`
	ReturnPoint int         `gorm:"column:return_point"`
	RankPoint   string      `gorm:"column:rank_point;size:64"`
	DrawSplit   bool        `gorm:"column:draw_split"`
	Source      string      `gorm:"column:source;size:64;index"`
}

// TableName overrides the pluralised default.
func (ResultRow) TableName() string { return "result" }

// RemarkRow is the persisted form of a Remark.
type RemarkRow struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ThreadTS string    `gorm:"column:thread_ts;size:32;index"`
	EventTS  string    `gorm:"column:event_ts;size:32;index"`
	Name     string    `gorm:"column:name;size:64"`
	Matter   string    `gorm:"column:matter;size:255"`
	Source   string    `gorm:"column:source;size:64;index"`
	Playtime time.Time `gorm:"column:playtime;index"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (RemarkRow) TableName() string { return "remarks" }

// ResultColumns lists the columns of the result table written by the store.
var ResultColumns = func() []string {
	cols := []string{"ts", "playtime", "deposit", "rpoint_sum", "comment", "rule_version",
		"origin_point", "return_point", "rank_point", "draw_split", "source"}
	for _, p := range []string{"p1_", "p2_", "p3_", "p4_"} {
		for _, c := range []string{"name", "str", "rpoint", "point", "rank"} {
			cols = append(cols, p+c)
		}
	}
	return cols
}()

// RemarkColumns lists the columns of the remarks table written by the store.
var RemarkColumns = []string{"id", "thread_ts", "event_ts", "name", "matter", "source", "playtime"}

func toResultRow(g *score.GameResult) ResultRow {
	row := ResultRow{
		TS:          g.TS,
		Playtime:    utils.TSTime(g.TS).UTC(),
		Deposit:     g.Deposit,
		RpointSum:   g.RawSum(),
		Comment:     g.Comment,
		RuleVersion: g.RuleVersion,
		OriginPoint: g.OriginPoint,
		ReturnPoint: g.ReturnPoint,
		RankPoint:   utils.JoinInts(g.RankPoint),
		DrawSplit:   g.DrawSplit,
		Source:      g.Source,
	}
	seats := []*seatColumns{&row.P1, &row.P2, &row.P3, &row.P4}
	for i, s := range g.Seats {
		if i >= len(seats) {
			break
		}
		*seats[i] = seatColumns{Name: s.Name, Str: s.RawInput, Rpoint: s.RawPoints, Point: s.Point, Rank: s.Rank}
	}
	return row
}

func (row ResultRow) toGameResult() *score.GameResult {
	g := &score.GameResult{
		TS:          row.TS,
		Comment:     row.Comment,
		Deposit:     row.Deposit,
		RuleVersion: row.RuleVersion,
		OriginPoint: row.OriginPoint,
		ReturnPoint: row.ReturnPoint,
		RankPoint:   utils.ToIntSlice(row.RankPoint),
		DrawSplit:   row.DrawSplit,
		Source:      row.Source,
	}
	n := len(g.RankPoint)
	if n == 0 || n > 4 {
		n = 4
	}
	for _, s := range []seatColumns{row.P1, row.P2, row.P3, row.P4}[:n] {
		g.Seats = append(g.Seats, score.SeatScore{
			Name:      s.Name,
			RawInput:  s.Str,
			RawPoints: s.Rpoint,
			Point:     s.Point,
			Rank:      s.Rank,
		})
	}
	return g
}

func toRemarkRow(r score.Remark) RemarkRow {
	return RemarkRow{
		ThreadTS: r.ThreadTS,
		EventTS:  r.EventTS,
		Name:     r.Name,
		Matter:   r.Matter,
		Source:   r.Source,
		Playtime: utils.TSTime(r.ThreadTS).UTC(),
	}
}

func (row RemarkRow) toRemark() score.Remark {
	return score.Remark{
		ThreadTS: row.ThreadTS,
		EventTS:  row.EventTS,
		Name:     row.Name,
		Matter:   row.Matter,
		Source:   row.Source,
	}
}

func prefixPattern(prefix string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(prefix) + "%"
}
