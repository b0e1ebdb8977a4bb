package chat

import (
	"context"
	"fmt"
	"path"
	"strings"

	"score-ledger/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const markerRoot = "reactions"

func markerKey(channel, ts, icon string) string {
	return path.Join(markerRoot, channel, ts, icon)
}

// listMarkers maps message ts to the icons placed on it.
func listMarkers(ctx context.Context, client storage.Client, bucket, channel string) (map[string]map[string]bool, error) {
	prefix := path.Join(markerRoot, channel) + "/"
	keys, err := storage.ListKeys(ctx, client, bucket, prefix, true)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]bool)
	for _, key := range keys {
		parts := strings.Split(strings.TrimPrefix(key, prefix), "/")
		if len(parts) != 2 {
			continue
		}
		if out[parts[0]] == nil {
			out[parts[0]] = make(map[string]bool)
		}
		out[parts[0]][parts[1]] = true
	}
	return out, nil
}

// Markers is a FeedbackPort keeping each marker as an empty object
// reactions/<channel>/<ts>/<icon>. Both operations are idempotent.
type Markers struct {
	client  storage.Client
	bucket  string
	channel string
	logger  *zap.Logger
}

// NewMarkers creates Markers. channel is used when a call names none.
func NewMarkers(client storage.Client, bucket, channel string, logger *zap.Logger) *Markers {
	return &Markers{client: client, bucket: bucket, channel: channel, logger: logger}
}

func (m *Markers) channelOr(id string) string {
	if id == "" {
		return m.channel
	}
	return id
}

// AddReaction places icon on the message ts.
func (m *Markers) AddReaction(ctx context.Context, icon, channelID, ts string) error {
	key := markerKey(m.channelOr(channelID), ts, icon)
	if err := storage.Touch(ctx, m.client, m.bucket, key); err != nil {
		return err
	}
	m.logger.Debug("Marker added", zap.String("key", key))
	return nil
}

// RemoveReaction clears icon from the message ts.
func (m *Markers) RemoveReaction(ctx context.Context, icon, channelID, ts string) error {
	key := markerKey(m.channelOr(channelID), ts, icon)
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to remove marker %s: %w", key, err)
	}
	m.logger.Debug("Marker removed", zap.String("key", key))
	return nil
}
