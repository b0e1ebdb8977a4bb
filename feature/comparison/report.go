package comparison

import (
	"fmt"
	"strings"
	"time"

	"score-ledger/core/utils"
	"score-ledger/feature/score"
)

// Report bucket names, used as metric labels and count keys.
const (
	BucketPending      = "pending"
	BucketMismatch     = "mismatch"
	BucketMissing      = "missing"
	BucketDelete       = "delete"
	BucketRemarkMod    = "remark_mod"
	BucketRemarkDel    = "remark_del"
	BucketInvalidScore = "invalid_score"
)

// Buckets lists the report buckets in report order.
var Buckets = []string{
	BucketPending, BucketMismatch, BucketMissing, BucketDelete,
	BucketRemarkMod, BucketRemarkDel, BucketInvalidScore,
}

// MismatchEntry is a stored result that differs from its posting.
type MismatchEntry struct {
	TS     string            `json:"ts"`
	Before *score.GameResult `json:"before"`
	After  *score.GameResult `json:"after"`
	Diff   string            `json:"diff,omitempty"`
}

// ScoreEntry is a result inserted into or deleted from the ledger.
type ScoreEntry struct {
	TS     string            `json:"ts"`
	Result *score.GameResult `json:"result"`
	Reason string            `json:"reason,omitempty"`
}

// InvalidEntry is a posting whose raw scores do not add up to the table total.
type InvalidEntry struct {
	TS      string            `json:"ts"`
	Deposit int               `json:"deposit"`
	Result  *score.GameResult `json:"result"`
}

// ComparisonReport is the outcome of one sweep.
type ComparisonReport struct {
	SweepID      string          `json:"sweep_id"`
	Source       string          `json:"source"`
	After        time.Time       `json:"after"`
	Before       time.Time       `json:"before"`
	DryRun       bool            `json:"dry_run"`
	Pending      []string        `json:"pending"`
	Mismatch     []MismatchEntry `json:"mismatch"`
	Missing      []ScoreEntry    `json:"missing"`
	Delete       []ScoreEntry    `json:"delete"`
	RemarkMod    []score.Remark  `json:"remark_mod"`
	RemarkDel    []score.Remark  `json:"remark_del"`
	InvalidScore []InvalidEntry  `json:"invalid_score"`
	Executed     int             `json:"executed"`
	Errors       []string        `json:"errors,omitempty"`
	Counts       map[string]int  `json:"counts"`
}

func (r *ComparisonReport) tally() {
	r.Counts = map[string]int{
		BucketPending:      len(r.Pending),
		BucketMismatch:     len(r.Mismatch),
		BucketMissing:      len(r.Missing),
		BucketDelete:       len(r.Delete),
		BucketRemarkMod:    len(r.RemarkMod),
		BucketRemarkDel:    len(r.RemarkDel),
		BucketInvalidScore: len(r.InvalidScore),
	}
}

// Consistent reports whether the sweep found nothing to repair.
func (r *ComparisonReport) Consistent() bool {
	return len(r.Mismatch) == 0 && len(r.Missing) == 0 && len(r.Delete) == 0 &&
		len(r.RemarkMod) == 0 && len(r.RemarkDel) == 0
}

// Text renders the report for posting back to the chat.
func (r *ComparisonReport) Text(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder

	fmt.Fprintf(&b, "*【データ突合】* (%s - %s)\n", r.After.In(loc).Format("2006/01/02"), r.Before.In(loc).Format("2006/01/02"))
	if len(r.Pending) > 0 {
		fmt.Fprintf(&b, "＊ 保留：%d件\n", len(r.Pending))
		for _, ts := range r.Pending {
			fmt.Fprintf(&b, "\t\t%s\n", utils.FormatTS(ts, loc))
		}
	}

	fmt.Fprintf(&b, "＊ 不一致：%d件\n", len(r.Mismatch))
	for _, m := range r.Mismatch {
		fmt.Fprintf(&b, "\t%s\n", utils.FormatTS(m.TS, loc))
		fmt.Fprintf(&b, "\t\t修正前：%s\n", m.Before.ToText(score.TextSimple))
		fmt.Fprintf(&b, "\t\t修正後：%s\n", m.After.ToText(score.TextSimple))
	}

	fmt.Fprintf(&b, "＊ 取りこぼし：%d件\n", len(r.Missing))
	for _, e := range r.Missing {
		fmt.Fprintf(&b, "\t%s %s\n", utils.FormatTS(e.TS, loc), e.Result.ToText(score.TextSimple))
	}

	fmt.Fprintf(&b, "＊ 削除漏れ：%d件\n", len(r.Delete))
	for _, e := range r.Delete {
		fmt.Fprintf(&b, "\t%s %s\n", utils.FormatTS(e.TS, loc), e.Result.ToText(score.TextSimple))
	}

	fmt.Fprintf(&b, "＊ メモ更新：%d件\n", len(r.RemarkMod))
	for _, rm := range r.RemarkMod {
		fmt.Fprintf(&b, "\t%s %s %s\n", utils.FormatTS(rm.EventTS, loc), rm.Name, rm.Matter)
	}

	fmt.Fprintf(&b, "＊ メモ削除：%d件\n", len(r.RemarkDel))
	for _, rm := range r.RemarkDel {
		fmt.Fprintf(&b, "\t%s %s %s\n", utils.FormatTS(rm.EventTS, loc), rm.Name, rm.Matter)
	}

	if len(r.InvalidScore) > 0 {
		b.WriteString("\n*【素点合計不一致】*\n")
		for _, e := range r.InvalidScore {
			fmt.Fprintf(&b, "\t%s [供託：%d]%s\n", utils.FormatTS(e.TS, loc), e.Deposit, e.Result.ToText(score.TextSimple))
		}
	}
	return b.String()
}
