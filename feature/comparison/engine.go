package comparison

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"score-ledger/core/reconcile"
	"score-ledger/core/utils"
	"score-ledger/feature/score"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
)

// ErrFetch marks a sweep aborted because the chat history or the ledger could not be read.
var ErrFetch = errors.New("comparison fetch failed")

// resultOptions compare results field for field. Source is ignored: a result is
// matched to its posting by ts within the swept source prefix.
var resultOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(score.GameResult{}, "Source"),
}

// Engine diffs the chat history against the ledger and repairs the ledger.
type Engine struct {
	rules    *score.RuleContext
	store    LedgerStore
	chat     ChatLedgerSource
	feedback FeedbackPort
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates an Engine. feedback may be nil, in which case no markers are touched.
func NewEngine(rules *score.RuleContext, store LedgerStore, chat ChatLedgerSource, feedback FeedbackPort, cfg Config, logger *zap.Logger) *Engine {
	if feedback == nil {
		feedback = noFeedback{}
	}
	return &Engine{
		rules:    rules,
		store:    store,
		chat:     chat,
		feedback: feedback,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the pending window.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Sweep compares everything posted since after with the ledger, plans the repairs
// and applies them unless opts.DryRun is set. A fetch failure aborts the sweep
// before anything is written. Failing repairs are logged, listed in the report
// and do not stop the others.
func (e *Engine) Sweep(ctx context.Context, after time.Time, opts reconcile.Options) (*ComparisonReport, error) {
	now := e.now()

	var (
		posts         []ScorePost
		remarkPosts   []RemarkPost
		stored        []*score.GameResult
		storedRemarks []score.Remark
	)
	err := reconcile.Gather(ctx,
		func(ctx context.Context) (err error) {
			posts, err = e.chat.FetchScorePosts(ctx, after)
			return err
		},
		func(ctx context.Context) (err error) {
			remarkPosts, err = e.chat.FetchRemarkPosts(ctx, after)
			return err
		},
		func(ctx context.Context) (err error) {
			stored, err = e.store.QueryScoresSince(ctx, after, e.cfg.Source)
			return err
		},
		func(ctx context.Context) (err error) {
			storedRemarks, err = e.store.QueryRemarksSince(ctx, after, e.cfg.Source)
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	s := &sweep{
		Engine:  e,
		now:     now,
		plan:    reconcile.NewPlan(),
		pending: make(map[string]struct{}),
		deleted: make(map[string]struct{}),
		report: &ComparisonReport{
			Source: e.cfg.Source,
			After:  after,
			Before: now,
			DryRun: opts.DryRun,
		},
	}
	s.indexChat(posts)
	s.compareScores(reconcile.Index(stored, func(g *score.GameResult) string { return g.TS }))
	s.checkDeposits()
	s.compareRemarks(remarkPosts, storedRemarks)
	s.report.tally()

	executed, err := reconcile.Apply(ctx, s.plan, &executor{Engine: e}, opts)
	s.report.Executed = executed
	if err != nil {
		e.logger.Error("Some repairs failed", zap.Error(err))
		s.report.Errors = strings.Split(err.Error(), "\n")
	}
	return s.report, nil
}

// chatScore is a score posting and its canonical result.
type chatScore struct {
	post    ScorePost
	result  *score.GameResult
	settled bool
}

// sweep is the state of one Sweep call.
type sweep struct {
	*Engine
	now    time.Time
	plan   *reconcile.Plan
	report *ComparisonReport

	chat    map[string]*chatScore
	keys    []string
	seen    map[string]struct{}
	stored  map[string]*score.GameResult
	pending map[string]struct{}
	deleted map[string]struct{}
	held    map[string]struct{}
}

// settled reports whether a message is past the pending window: the later of its
// last edit and its posting, plus the wait window, lies at or before now.
func (s *sweep) settled(ts string, edited []string) bool {
	check := ts
	if len(edited) > 0 {
		check = edited[0]
		for _, e := range edited[1:] {
			check = utils.LaterTS(check, e)
		}
	}
	return !utils.TSTime(check).Add(s.cfg.Wait()).After(s.now)
}

func (s *sweep) markPending(ts string) {
	if _, ok := s.pending[ts]; ok {
		return
	}
	s.pending[ts] = struct{}{}
	s.report.Pending = append(s.report.Pending, ts)
	s.logger.Info("Pending", zap.String("ts", ts), zap.String("at", utils.FormatTS(ts, time.Local)))
}

func (s *sweep) channel(id string) string {
	if id != "" {
		return id
	}
	return s.cfg.ChannelID
}

// forbidden reports whether a posting sits in a thread while thread reports are off.
func (s *sweep) forbidden(post ScorePost) bool {
	return !s.cfg.ThreadReport && post.InThread
}

// indexChat scores every posting. Messages that are not postings are ignored.
// Postings that cannot be evaluated or are incomplete are held: they are not
// compared but still protect their stored result from deletion.
func (s *sweep) indexChat(posts []ScorePost) {
	s.chat = make(map[string]*chatScore, len(posts))
	s.seen = make(map[string]struct{}, len(posts))
	s.held = make(map[string]struct{})

	for _, post := range posts {
		result, ok, err := s.rules.Score(post.TS, post.RawText, s.cfg.Source)
		if !ok {
			continue
		}
		s.seen[post.TS] = struct{}{}
		if err != nil {
			s.logger.Warn("Posting held, score not evaluable", zap.String("ts", post.TS), zap.Error(err))
			s.held[post.TS] = struct{}{}
			continue
		}
		if !result.HasValidData() {
			s.logger.Debug("Posting held, score incomplete", zap.String("ts", post.TS))
			s.held[post.TS] = struct{}{}
			continue
		}
		s.chat[post.TS] = &chatScore{post: post, result: result, settled: s.settled(post.TS, post.EditedTS)}
		s.keys = append(s.keys, post.TS)
	}
	sort.Strings(s.keys)
}

func (s *sweep) compareScores(stored map[string]*score.GameResult) {
	s.stored = stored
	active := s.rules.Rule.Version

	for _, ts := range s.keys {
		c := s.chat[ts]
		if !c.settled {
			s.markPending(ts)
			continue
		}
		text := c.result.ToText(score.TextSimple)

		current, inStore := stored[ts]
		if !inStore {
			if s.forbidden(c.post) {
				continue
			}
			s.logger.Warn("Missing", zap.String("ts", ts), zap.String("score", text))
			s.report.Missing = append(s.report.Missing, ScoreEntry{TS: ts, Result: c.result})
			s.plan.Add(reconcile.Action{Type: reconcile.ActionInsert, Key: ts, Reason: "missing", Payload: c.result})
			continue
		}

		if s.forbidden(c.post) {
			s.logger.Warn("Delete", zap.String("ts", ts), zap.String("score", text), zap.String("reason", "in-thread report"))
			s.report.Delete = append(s.report.Delete, ScoreEntry{TS: ts, Result: c.result, Reason: "in-thread report"})
			s.deleted[ts] = struct{}{}
			s.plan.Add(reconcile.Action{Type: reconcile.ActionDelete, Key: ts, Reason: "in-thread report", Payload: s.channel(c.post.ChannelID)})
			continue
		}

		p := reconcile.Compare(ts, map[string]*score.GameResult{ts: c.result}, stored, resultOptions...)
		if p.Mismatch == "" {
			s.logger.Info("Score check pass", zap.String("ts", ts), zap.String("score", text))
			continue
		}
		if current.RuleVersion != active {
			s.logger.Info("Score check skip, rule version differs", zap.String("ts", ts), zap.String("rule_version", current.RuleVersion))
			continue
		}

		s.logger.Warn("Mismatch", zap.String("ts", ts),
			zap.String("before", current.ToText(score.TextSimple)),
			zap.String("after", text),
			zap.String("diff", p.Mismatch),
		)
		s.report.Mismatch = append(s.report.Mismatch, MismatchEntry{TS: ts, Before: current, After: c.result, Diff: p.Mismatch})
		s.plan.Add(reconcile.Action{Type: reconcile.ActionUpdate, Key: ts, Reason: "mismatch", Payload: c.result})
	}

	for _, ts := range reconcile.Keys(stored) {
		if !s.settled(ts, nil) {
			s.markPending(ts)
			continue
		}
		if _, ok := s.seen[ts]; ok {
			continue
		}
		s.logger.Warn("Delete", zap.String("ts", ts), zap.String("score", stored[ts].ToText(score.TextSimple)), zap.String("reason", "only in ledger"))
		s.report.Delete = append(s.report.Delete, ScoreEntry{TS: ts, Result: stored[ts], Reason: "only in ledger"})
		s.deleted[ts] = struct{}{}
		s.plan.Add(reconcile.Action{Type: reconcile.ActionDelete, Key: ts, Reason: "only in ledger", Payload: s.cfg.ChannelID})
	}
}

// checkDeposits marks every settled posting of the active rule ok or ng by
// whether its raw scores balance.
func (s *sweep) checkDeposits() {
	active := s.rules.Rule.Version

	for _, ts := range s.keys {
		c := s.chat[ts]
		if !c.settled || s.forbidden(c.post) {
			continue
		}
		version := c.result.RuleVersion
		if current, ok := s.stored[ts]; ok {
			version = current.RuleVersion
		}
		if version != active {
			continue
		}

		channel := s.channel(c.post.ChannelID)
		if c.result.Deposit != 0 {
			s.logger.Warn("Invalid score", zap.String("ts", ts), zap.Int("deposit", c.result.Deposit))
			s.report.InvalidScore = append(s.report.InvalidScore, InvalidEntry{TS: ts, Deposit: c.result.Deposit, Result: c.result})
			if c.post.ReactionOK {
				s.addFeedback(false, s.cfg.ReactionOK, channel, ts)
			}
			if !c.post.ReactionNG {
				s.addFeedback(true, s.cfg.ReactionNG, channel, ts)
			}
			continue
		}
		if c.post.ReactionNG {
			s.addFeedback(false, s.cfg.ReactionNG, channel, ts)
		}
		if !c.post.ReactionOK {
			s.addFeedback(true, s.cfg.ReactionOK, channel, ts)
		}
	}
}

func (s *sweep) addFeedback(add bool, icon, channel, ts string) {
	reason := "remove " + icon
	if add {
		reason = "add " + icon
	}
	s.plan.Add(reconcile.Action{
		Type:    reconcile.ActionFeedback,
		Key:     ts,
		Reason:  reason,
		Payload: feedbackPayload{Add: add, Icon: icon, Channel: channel},
	})
}

func remarkKey(r score.Remark) string {
	return strings.Join([]string{r.ThreadTS, r.EventTS, r.Name, r.Matter}, "\x00")
}

// compareRemarks accepts a remark when it is posted inside the thread of a game
// that is recorded or about to be, and names one of its seats. Remarks under an
// unrecorded game still in its wait window are pending. Threads with remarks
// missing from the ledger get their remarks replaced; stored remarks no longer
// posted are deleted unless their game is held or deleted.
func (s *sweep) compareRemarks(posts []RemarkPost, stored []score.Remark) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].TS < posts[j].TS })

	var canonical []score.Remark
	canonicalKeys := make(map[string]struct{})
	pendingEvents := make(map[string]struct{})
	channels := make(map[string]string)

	for _, post := range posts {
		if !post.InThread {
			continue
		}
		parent, ok := s.chat[post.ThreadTS]
		if !ok || s.forbidden(parent.post) {
			continue
		}
		_, recorded := s.stored[post.ThreadTS]
		if !s.settled(post.TS, post.EditedTS) || (!recorded && !parent.settled) {
			pendingEvents[post.TS] = struct{}{}
		}
		channels[post.TS] = s.channel(post.ChannelID)

		for _, pair := range s.rules.Remarks(post.RawText) {
			if !parent.result.HasPlayer(pair.Name) {
				continue
			}
			r := score.Remark{ThreadTS: post.ThreadTS, EventTS: post.TS, Name: pair.Name, Matter: pair.Matter, Source: s.cfg.Source}
			key := remarkKey(r)
			if _, dup := canonicalKeys[key]; dup {
				continue
			}
			canonicalKeys[key] = struct{}{}
			canonical = append(canonical, r)
		}
	}

	storedIndex := reconcile.Index(stored, remarkKey)

	var threads []string
	modified := make(map[string]struct{})
	for _, r := range canonical {
		if _, ok := pendingEvents[r.EventTS]; ok {
			s.markPending(r.EventTS)
			continue
		}
		if _, ok := storedIndex[remarkKey(r)]; ok {
			s.logger.Debug("Remark pass", zap.String("event_ts", r.EventTS), zap.String("name", r.Name))
			continue
		}
		s.logger.Warn("Remark modification", zap.String("thread_ts", r.ThreadTS), zap.String("event_ts", r.EventTS), zap.String("name", r.Name), zap.String("matter", r.Matter))
		s.report.RemarkMod = append(s.report.RemarkMod, r)
		if _, ok := modified[r.ThreadTS]; !ok {
			modified[r.ThreadTS] = struct{}{}
			threads = append(threads, r.ThreadTS)
		}
	}

	for _, thread := range threads {
		payload := remarkReplacePayload{Thread: thread, Channels: make(map[string]string)}
		for _, r := range canonical {
			if r.ThreadTS != thread {
				continue
			}
			if _, ok := pendingEvents[r.EventTS]; ok {
				continue
			}
			payload.Remarks = append(payload.Remarks, r)
			payload.Channels[r.EventTS] = channels[r.EventTS]
		}
		// stored remarks of posts still being edited are carried over unchanged
		for _, r := range stored {
			if _, ok := pendingEvents[r.EventTS]; ok && r.ThreadTS == thread {
				payload.Remarks = append(payload.Remarks, r)
			}
		}
		s.plan.Add(reconcile.Action{Type: reconcile.ActionRemarkReplace, Key: thread, Reason: "remark mismatch", Payload: payload})
	}

	for _, r := range stored {
		if _, ok := canonicalKeys[remarkKey(r)]; ok {
			continue
		}
		// removed with their game
		if _, ok := s.deleted[r.ThreadTS]; ok {
			continue
		}
		if _, ok := s.held[r.ThreadTS]; ok {
			s.logger.Debug("Remark kept, game held", zap.String("thread_ts", r.ThreadTS), zap.String("event_ts", r.EventTS))
			continue
		}
		s.logger.Warn("Remark deletion", zap.String("thread_ts", r.ThreadTS), zap.String("event_ts", r.EventTS), zap.String("name", r.Name), zap.String("matter", r.Matter))
		s.report.RemarkDel = append(s.report.RemarkDel, r)
		s.plan.Add(reconcile.Action{
			Type:    reconcile.ActionRemarkDelete,
			Key:     r.EventTS,
			Reason:  "only in ledger",
			Payload: remarkDeletePayload{Remark: r, Channel: s.channel(channels[r.EventTS])},
		})
	}
}
