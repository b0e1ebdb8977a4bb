package comparison

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"score-ledger/core/reconcile"
	"score-ledger/feature/ledger"
	"score-ledger/feature/score"

	"go.uber.org/zap"
)

type feedbackPayload struct {
	Add     bool
	Icon    string
	Channel string
}

type remarkReplacePayload struct {
	Thread  string
	Remarks []score.Remark
	// Channels maps the event ts of each accepted remark posting to its channel.
	Channels map[string]string
}

type remarkDeletePayload struct {
	Remark  score.Remark
	Channel string
}

// executor applies planned actions to the ledger and the chat markers.
type executor struct {
	*Engine
}

func (x *executor) Execute(ctx context.Context, action reconcile.Action) error {
	switch action.Type {
	case reconcile.ActionInsert:
		_, err := x.store.Insert(ctx, action.Payload.(*score.GameResult))
		return err

	case reconcile.ActionUpdate:
		err := x.store.Update(ctx, action.Payload.(*score.GameResult))
		if errors.Is(err, ledger.ErrNotFound) {
			x.logger.Warn("Update skipped, result no longer stored", zap.String("ts", action.Key))
			return nil
		}
		return err

	case reconcile.ActionDelete:
		return x.delete(ctx, action.Key, action.Payload.(string))

	case reconcile.ActionRemarkReplace:
		return x.replaceRemarks(ctx, action.Payload.(remarkReplacePayload))

	case reconcile.ActionRemarkDelete:
		p := action.Payload.(remarkDeletePayload)
		left, err := x.store.RemarkDeleteExact(ctx, p.Remark)
		if err != nil {
			return err
		}
		if left == 0 {
			return x.feedback.RemoveReaction(ctx, x.cfg.ReactionOK, p.Channel, p.Remark.EventTS)
		}
		return nil

	case reconcile.ActionFeedback:
		p := action.Payload.(feedbackPayload)
		if p.Add {
			return x.feedback.AddReaction(ctx, p.Icon, p.Channel, action.Key)
		}
		return x.feedback.RemoveReaction(ctx, p.Icon, p.Channel, action.Key)
	}
	return fmt.Errorf("unknown action type %q", action.Type)
}

// delete removes a result with its remarks and clears the markers on the
// posting and on every removed remark posting.
func (x *executor) delete(ctx context.Context, ts, channel string) error {
	events, err := x.store.Delete(ctx, ts)
	if errors.Is(err, ledger.ErrNotFound) {
		x.logger.Warn("Delete skipped, result no longer stored", zap.String("ts", ts))
		return nil
	}
	if err != nil {
		return err
	}

	var errs []error
	for _, icon := range []string{x.cfg.ReactionOK, x.cfg.ReactionNG} {
		if err := x.feedback.RemoveReaction(ctx, icon, channel, ts); err != nil {
			errs = append(errs, err)
		}
	}
	for _, event := range events {
		if err := x.feedback.RemoveReaction(ctx, x.cfg.ReactionOK, channel, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (x *executor) replaceRemarks(ctx context.Context, p remarkReplacePayload) error {
	if _, err := x.store.ReplaceThreadRemarks(ctx, p.Thread, p.Remarks); err != nil {
		return err
	}

	events := make([]string, 0, len(p.Channels))
	for event := range p.Channels {
		events = append(events, event)
	}
	sort.Strings(events)

	var errs []error
	for _, event := range events {
		if err := x.feedback.AddReaction(ctx, x.cfg.ReactionOK, p.Channels[event], event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noFeedback struct{}

func (noFeedback) AddReaction(context.Context, string, string, string) error    { return nil }
func (noFeedback) RemoveReaction(context.Context, string, string, string) error { return nil }
