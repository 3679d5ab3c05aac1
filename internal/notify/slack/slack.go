// Package slack posts the periodic claims-queue digest to a Slack incoming
// webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimdesk/internal/triage"
)

const (
	maxTitleLen = 120
	httpTimeout = 10 * time.Second
)

// Notifier sends queue digests to a Slack webhook.
type Notifier struct {
	webhookURL string
	logger     log.Logger
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, SendDigest is a
// no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		logger:     logger,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// SendDigest posts a queue digest to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) SendDigest(ctx context.Context, d *triage.Digest) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(d)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(d *triage.Digest) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(d),
			{"type": "divider"},
			kpiBlock(d),
			{"type": "divider"},
			topRowsBlock(d),
			{"type": "divider"},
			contextBlock(d),
		},
	}
}

func headerBlock(d *triage.Digest) map[string]any {
	text := fmt.Sprintf("%s Claims queue digest", queueEmoji(&d.KPIs))

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func kpiBlock(d *triage.Digest) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Open:* %d", d.KPIs.TotalOpen),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Needs action:* %d", d.KPIs.NeedsAction),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*SLA breach:* %d", d.KPIs.SLABreach),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Stuck:* %d", d.KPIs.Stuck),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Unassigned:* %d", d.KPIs.Unassigned),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Waiting on member:* %d", d.KPIs.WaitingOnMember),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func topRowsBlock(d *triage.Digest) map[string]any {
	if len(d.TopRows) == 0 {
		return map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "_Queue is empty._",
			},
		}
	}

	text := "*Top of the queue*\n"
	for i := range d.TopRows {
		r := &d.TopRows[i]
		flags := ""
		if r.SLABreach {
			flags += " \U0001f534"
		}
		if r.Unassigned {
			flags += " \U0001f464"
		}
		text += fmt.Sprintf("\n`%s` %s • %s, %dd in stage%s",
			r.Number, truncate(r.Title, maxTitleLen), r.Status, r.DaysInStage, flags)
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": text,
		},
	}
}

func contextBlock(d *triage.Digest) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("claimdesk • tenant %s • %s", d.TenantID, d.At.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func queueEmoji(k *triage.KPISet) string {
	switch {
	case k.SLABreach > 0:
		return "\U0001f534" // red circle
	case k.NeedsAction > 0:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
