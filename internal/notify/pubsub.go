// Package notify publishes run reports to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/sync"
)

// PubSubNotifier sends each run report as a JSON message on a GCP Pub/Sub
// topic. Authentication uses Application Default Credentials.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubNotifier creates the client and verifies the topic exists, so a
// misconfigured deployment fails at startup instead of on the first run.
func NewPubSubNotifier(ctx context.Context, projectID, topicID string, logger *zap.Logger) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close pubsub client after existence check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("check topic %q: %w", topicID, err)
	}
	if !exists {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close pubsub client after missing topic", zap.Error(cerr))
		}
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}
	return &PubSubNotifier{client: client, topic: topic, logger: logger}, nil
}

// NotifyRun publishes the report and waits for the server ack, so a failed
// publish surfaces in the run's warning log rather than disappearing.
func (n *PubSubNotifier) NotifyRun(ctx context.Context, report sync.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	result := n.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"run_id": report.RunID,
			"state":  string(report.State),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish run %s: %w", report.RunID, err)
	}
	return nil
}

// Close stops the topic publisher and the underlying client.
func (n *PubSubNotifier) Close() error {
	n.topic.Stop()
	if err := n.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
