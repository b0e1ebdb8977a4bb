package comparison

import (
	"context"
	"time"

	"score-ledger/feature/score"
)

// ScorePost is a chat message that may hold a score posting.
type ScorePost struct {
	TS        string   `json:"ts"`
	EditedTS  []string `json:"edited_ts,omitempty"`
	ChannelID string   `json:"channel_id"`
	UserID    string   `json:"user_id"`
	RawText   string   `json:"text"`
	InThread  bool     `json:"in_thread"`
	// ReactionOK and ReactionNG report whether the ok and ng markers are on the message.
	ReactionOK bool `json:"reaction_ok"`
	ReactionNG bool `json:"reaction_ng"`
}

// RemarkPost is a thread reply that may hold remarks on a game.
type RemarkPost struct {
	TS        string   `json:"ts"`
	ThreadTS  string   `json:"thread_ts"`
	EditedTS  []string `json:"edited_ts,omitempty"`
	ChannelID string   `json:"channel_id"`
	UserID    string   `json:"user_id"`
	RawText   string   `json:"text"`
	InThread  bool     `json:"in_thread"`
}

// ChatLedgerSource is a read-only view of the chat history.
type ChatLedgerSource interface {
	FetchScorePosts(ctx context.Context, after time.Time) ([]ScorePost, error)
	FetchRemarkPosts(ctx context.Context, after time.Time) ([]RemarkPost, error)
}

// FeedbackPort places markers on chat messages. Adding a marker that is already
// there or removing one that is not must succeed.
type FeedbackPort interface {
	AddReaction(ctx context.Context, icon, channelID, ts string) error
	RemoveReaction(ctx context.Context, icon, channelID, ts string) error
}

// LedgerStore is the part of the ledger a sweep reads and repairs.
type LedgerStore interface {
	Get(ctx context.Context, ts string) (*score.GameResult, error)
	Insert(ctx context.Context, g *score.GameResult) (bool, error)
	Update(ctx context.Context, g *score.GameResult) error
	Delete(ctx context.Context, ts string) ([]string, error)
	QueryScoresSince(ctx context.Context, after time.Time, sourcePrefix string) ([]*score.GameResult, error)
	QueryRemarksSince(ctx context.Context, after time.Time, sourcePrefix string) ([]score.Remark, error)
	ReplaceThreadRemarks(ctx context.Context, threadTS string, remarks []score.Remark) (int, error)
	RemarkDeleteExact(ctx context.Context, r score.Remark) (int64, error)
}
