package config

const (
	// TopicEmbedTask is the NSQ topic for embedding batch operations created
	// by the planner. One message per Operation.
	TopicEmbedTask = "embed.task"

	// TopicWebhookEvent is the NSQ topic for outbound webhook events awaiting
	// delivery.
	TopicWebhookEvent = "webhook.event"
)
