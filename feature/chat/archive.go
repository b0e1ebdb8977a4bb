package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"score-ledger/core/storage"
	"score-ledger/core/utils"
	"score-ledger/feature/comparison"

	"go.uber.org/zap"
)

// Message is one line of the chat archive. An edit is written as a new line with
// the same ts and the edit time in EditedTS; a deletion as a line with Deleted set.
type Message struct {
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
	EditedTS string `json:"edited_ts,omitempty"`
	User     string `json:"user"`
	Text     string `json:"text"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// InThread reports whether the message is a reply inside a thread.
func (m Message) InThread() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

type message struct {
	Message
	edits []string
}

// Archive reads a channel's history from object storage. Messages live in
// <prefix>/<channel>/<YYYY-MM-DD>.jsonl; markers are the objects written by Markers.
type Archive struct {
	client  storage.Client
	bucket  string
	prefix  string
	channel string
	okIcon  string
	ngIcon  string
	logger  *zap.Logger
}

// NewArchive creates an Archive for the channel configured in cfg.
func NewArchive(client storage.Client, bucket string, cfg comparison.Config, logger *zap.Logger) *Archive {
	return &Archive{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(cfg.ChatPrefix, "/"),
		channel: cfg.ChannelID,
		okIcon:  cfg.ReactionOK,
		ngIcon:  cfg.ReactionNG,
		logger:  logger,
	}
}

// FetchScorePosts returns every live message posted at or after after.
func (a *Archive) FetchScorePosts(ctx context.Context, after time.Time) ([]comparison.ScorePost, error) {
	msgs, err := a.messages(ctx, after)
	if err != nil {
		return nil, err
	}
	markers, err := listMarkers(ctx, a.client, a.bucket, a.channel)
	if err != nil {
		return nil, err
	}

	posts := make([]comparison.ScorePost, 0, len(msgs))
	for _, m := range msgs {
		posts = append(posts, comparison.ScorePost{
			TS:         m.TS,
			EditedTS:   m.edits,
			ChannelID:  a.channel,
			UserID:     m.User,
			RawText:    m.Text,
			InThread:   m.InThread(),
			ReactionOK: markers[m.TS][a.okIcon],
			ReactionNG: markers[m.TS][a.ngIcon],
		})
	}
	return posts, nil
}

// FetchRemarkPosts returns every live thread reply posted at or after after.
func (a *Archive) FetchRemarkPosts(ctx context.Context, after time.Time) ([]comparison.RemarkPost, error) {
	msgs, err := a.messages(ctx, after)
	if err != nil {
		return nil, err
	}

	var posts []comparison.RemarkPost
	for _, m := range msgs {
		if !m.InThread() {
			continue
		}
		posts = append(posts, comparison.RemarkPost{
			TS:        m.TS,
			ThreadTS:  m.ThreadTS,
			EditedTS:  m.edits,
			ChannelID: a.channel,
			UserID:    m.User,
			RawText:   m.Text,
			InThread:  true,
		})
	}
	return posts, nil
}

func (a *Archive) messages(ctx context.Context, after time.Time) ([]*message, error) {
	dir := path.Join(a.prefix, a.channel) + "/"
	keys, err := storage.ListKeys(ctx, a.client, a.bucket, dir, true)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	byTS := make(map[string]*message)
	for _, key := range keys {
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSuffix(path.Base(key), ".jsonl"), time.UTC)
		if err != nil || !strings.HasSuffix(key, ".jsonl") {
			a.logger.Debug("Skipping archive object", zap.String("key", key))
			continue
		}
		if day.Add(24 * time.Hour).Before(after) {
			continue
		}

		err = storage.ReadLines(ctx, a.client, a.bucket, key, func(line []byte) error {
			var rec Message
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("invalid message: %w", err)
			}
			merge(byTS, rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	out := make([]*message, 0, len(byTS))
	for _, m := range byTS {
		if m.Deleted || utils.TSTime(m.TS).Before(after) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out, nil
}

func merge(byTS map[string]*message, rec Message) {
	if rec.TS == "" {
		return
	}
	m, ok := byTS[rec.TS]
	if !ok {
		m = &message{Message: rec}
		if rec.EditedTS != "" {
			m.edits = []string{rec.EditedTS}
		}
		byTS[rec.TS] = m
		return
	}
	if rec.Deleted {
		m.Deleted = true
		return
	}
	m.Text = rec.Text
	if rec.ThreadTS != "" {
		m.ThreadTS = rec.ThreadTS
	}
	if rec.EditedTS != "" {
		m.edits = append(m.edits, rec.EditedTS)
	}
}
