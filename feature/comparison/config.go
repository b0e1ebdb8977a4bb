package comparison

import "time"

// Config holds the reconciliation sweep settings.
type Config struct {
	// Source tags results recorded from the swept channel and scopes the ledger query.
	Source string `mapstructure:"source" default:"slack"`
	// ChannelID is the chat channel holding score postings.
	ChannelID string `mapstructure:"channel_id" default:""`
	// ThreadReport allows score postings inside a thread.
	ThreadReport bool `mapstructure:"thread_report" default:"true"`
	// WaitSeconds is the pending window after a posting or its last edit.
	WaitSeconds int `mapstructure:"wait_seconds" default:"180"`
	// AfterDays is the default sweep window.
	AfterDays int `mapstructure:"after_days" default:"7"`
	// ReactionOK marks a posting that was recorded and balances.
	ReactionOK string `mapstructure:"reaction_ok" default:"ok_hand"`
	// ReactionNG marks a posting whose raw scores do not balance.
	ReactionNG string `mapstructure:"reaction_ng" default:"ng"`
	// FeedbackRate caps marker calls per second. Zero disables the limit.
	FeedbackRate float64 `mapstructure:"feedback_rate" default:"1"`
	// FeedbackBurst is the marker call burst size.
	FeedbackBurst int `mapstructure:"feedback_burst" default:"5"`
	// ChatPrefix is the object storage prefix of the chat archive.
	ChatPrefix string `mapstructure:"chat_prefix" default:"chat"`
	// ArchiveReports uploads every report as JSON to object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
}

// Wait returns the pending window.
func (c Config) Wait() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

// Window returns the default sweep window.
func (c Config) Window() time.Duration {
	return time.Duration(c.AfterDays) * 24 * time.Hour
}
