package gateways

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// SNS rejects subjects longer than this
const maxSNSSubject = 100

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes notifications to an SNS topic
type SNSNotifier struct {
	api      snsAPI
	topicARN string
}

// NewSNSNotifier creates a notifier for topicARN
func NewSNSNotifier(cfg aws.Config, topicARN string) *SNSNotifier {
	return &SNSNotifier{api: sns.NewFromConfig(cfg), topicARN: topicARN}
}

var _ gateways.Notifier = (*SNSNotifier)(nil)

// Notify publishes msg. The subject is flattened to one line and cut to the SNS limit.
func (n *SNSNotifier) Notify(ctx context.Context, msg gateways.Message) error {
	_, err := n.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(snsSubject(msg.Subject)),
		Message:  aws.String(msg.Body),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS topic %s: %w", n.topicARN, err)
	}
	return nil
}

func snsSubject(subject string) string {
	subject = strings.Join(strings.Fields(subject), " ")
	if len(subject) > maxSNSSubject {
		subject = subject[:maxSNSSubject]
	}
	return subject
}
