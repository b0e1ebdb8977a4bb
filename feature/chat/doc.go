// Package chat reads a chat channel's exported history from object storage and
// keeps feedback markers next to it.
//
// Archive implements comparison.ChatLedgerSource over JSON line files written by
// the chat exporter. Markers implements comparison.FeedbackPort with one empty
// object per marker. RateLimited caps the rate of marker calls.
package chat
