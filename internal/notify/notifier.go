// internal/notify/notifier.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclients "dealsdash/internal/common/aws"
	"dealsdash/internal/common/logger"
	"dealsdash/internal/models"
)

const EventDealsExpired = "deals.expired"

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// ExpiredEvent is the SNS message published after a sweep that expired deals.
type ExpiredEvent struct {
	Type    string               `json:"type"`
	SweepID string               `json:"sweepId"`
	SweptAt time.Time            `json:"sweptAt"`
	Count   int                  `json:"count"`
	Deals   []models.ExpiredDeal `json:"deals"`
}

type Config struct {
	SNSEnabled   bool
	TopicARN     string
	EmailEnabled bool
	FromEmail    string
	ToEmail      string
}

// Notifier fans an expiration report out to SNS and SES. Either channel may
// be disabled; with both disabled NotifyExpired is a no-op.
type Notifier struct {
	config Config
	sns    awsclients.SNSAPI
	ses    awsclients.SESAPI
	logger logger.Logger
}

func NewNotifier(cfg Config, snsClient awsclients.SNSAPI, sesClient awsclients.SESAPI, log logger.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		sns:    snsClient,
		ses:    sesClient,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

func (n *Notifier) Enabled() bool {
	return (n.config.SNSEnabled && n.sns != nil) || (n.config.EmailEnabled && n.ses != nil)
}

// NotifyExpired reports one sweep. Empty sweeps send nothing.
func (n *Notifier) NotifyExpired(ctx context.Context, sweepID string, at time.Time, deals []models.ExpiredDeal) error {
	if len(deals) == 0 || !n.Enabled() {
		return nil
	}

	var errs []error
	if n.config.SNSEnabled && n.sns != nil {
		if err := n.publish(ctx, sweepID, at, deals); err != nil {
			errs = append(errs, fmt.Errorf("%w: sns: %v", ErrNotificationSendFailed, err))
		}
	}
	if n.config.EmailEnabled && n.ses != nil {
		if err := n.sendDigest(ctx, at, deals); err != nil {
			errs = append(errs, fmt.Errorf("%w: ses: %v", ErrNotificationSendFailed, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	n.logger.Info("Expiration notification sent", map[string]interface{}{
		"sweepId": sweepID,
		"count":   len(deals),
	})
	return nil
}

func (n *Notifier) publish(ctx context.Context, sweepID string, at time.Time, deals []models.ExpiredDeal) error {
	body, err := json.Marshal(ExpiredEvent{
		Type:    EventDealsExpired,
		SweepID: sweepID,
		SweptAt: at.UTC(),
		Count:   len(deals),
		Deals:   deals,
	})
	if err != nil {
		return err
	}

	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String("Deals expired"),
		Message:  aws.String(string(body)),
	})
	return err
}

func (n *Notifier) sendDigest(ctx context.Context, at time.Time, deals []models.ExpiredDeal) error {
	subject, body := renderDigest(at, deals)
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.config.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func renderDigest(at time.Time, deals []models.ExpiredDeal) (string, string) {
	subject := fmt.Sprintf("%d deal(s) expired", len(deals))

	var b strings.Builder
	fmt.Fprintf(&b, "The expiration sweep at %s deactivated %d deal(s):\n\n", at.UTC().Format(time.RFC3339), len(deals))
	for _, d := range deals {
		fmt.Fprintf(&b, "- %s (deal %s, vendor %s)\n", d.Title, d.ID, d.VendorID)
	}
	return subject, b.String()
}
