package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func newSQSSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("sqs block is missing")
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &sink{
		id:   cfg.ID,
		kind: KindSQS,
		send: sqsSender(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL),
		log:  orNop(log),
	}, nil
}

func sqsSender(api sqsAPI, queueURL string) sendFunc {
	return func(ctx context.Context, payload []byte, attrs map[string]string) (string, error) {
		out, err := api.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(queueURL),
			MessageBody: aws.String(string(payload)),
			MessageAttributes: convertAttributes(attrs, func(v string) sqstypes.MessageAttributeValue {
				return sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
			}),
		})
		if err != nil {
			return "", fmt.Errorf("sqs send to %s: %w", queueURL, err)
		}
		return aws.ToString(out.MessageId), nil
	}
}
