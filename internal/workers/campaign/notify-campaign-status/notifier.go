// internal/workers/campaign/notify-campaign-status/notifier.go
package notifycampaignstatus

import (
	"context"

	commonaws "leadgen-workers/internal/common/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// EmailNotifier sends one status email and returns the provider message
// id.
type EmailNotifier interface {
	Send(ctx context.Context, from, to, subject, body string) (string, error)
}

// SMSNotifier publishes one SMS and returns the provider message id.
type SMSNotifier interface {
	Publish(ctx context.Context, phone, message string) (string, error)
}

type sesNotifier struct {
	client *commonaws.SESClient
}

func NewSESNotifier(client *commonaws.SESClient) EmailNotifier {
	return &sesNotifier{client: client}
}

func (n *sesNotifier) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

type snsNotifier struct {
	client *commonaws.SNSClient
}

func NewSNSNotifier(client *commonaws.SNSClient) SMSNotifier {
	return &snsNotifier{client: client}
}

func (n *snsNotifier) Publish(ctx context.Context, phone, message string) (string, error) {
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
