package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"mediasort/internal/config"
)

const userAgent = "MediaSorter/1.0"

// Event names a pipeline milestone.
type Event string

const (
	// EventImportCompleted fires when a mass import walk finishes.
	EventImportCompleted Event = "import_completed"
	// EventPlacementFailed fires when a file could not be organized.
	EventPlacementFailed Event = "placement_failed"
	// EventMonitoringStarted fires when the watcher and workers come up.
	EventMonitoringStarted Event = "monitoring_started"
	// EventTest checks notification delivery end to end.
	EventTest Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service defines the notification surface used by the pipeline.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "text/plain; charset=utf-8")
	return &ntfyService{
		endpoint: topic,
		client:   client,
		imports:  cfg.Notifications.Imports,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *resty.Client
	imports  bool
	errors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventImportCompleted:
		if !n.imports {
			return message{}, false
		}
		body := fmt.Sprintf("📥 Import finished: moved %d files", payload.num("moved"))
		if dir := payload.str("dir"); dir != "" {
			body += " from " + dir
		}
		if failed := payload.num("failed"); failed > 0 {
			body += fmt.Sprintf(" (%d failed)", failed)
		}
		return message{
			title: "MediaSort - Import Complete",
			body:  body,
			tags:  []string{"mediasort", "import", "completed"},
		}, true
	case EventPlacementFailed:
		if !n.errors {
			return message{}, false
		}
		body := "❌ Failed to organize"
		if file := payload.str("file"); file != "" {
			body += " " + file
		}
		if errText := payload.str("error"); errText != "" {
			body += ": " + errText
		}
		return message{
			title:    "MediaSort - Error",
			body:     body,
			tags:     []string{"mediasort", "error", "alert"},
			priority: "high",
		}, true
	case EventMonitoringStarted:
		return message{
			title:    "MediaSort - Monitoring",
			body:     "👀 Watching " + payload.str("root"),
			tags:     []string{"mediasort", "monitor"},
			priority: "low",
		}, true
	case EventTest:
		return message{
			title:    "MediaSort - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"mediasort", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req := n.client.R().SetContext(ctx).SetBody(msg.body)
	if msg.title != "" {
		req.SetHeader("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.SetHeader("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.SetHeader("Priority", msg.priority)
	}

	resp, err := req.Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if len(body) > 2048 {
			body = body[:2048]
		}
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode(), body)
	}
	return nil
}

func (p Payload) str(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) num(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
