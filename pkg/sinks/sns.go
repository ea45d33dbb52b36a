package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func newSNSSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("sns block is missing")
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &sink{
		id:   cfg.ID,
		kind: KindSNS,
		send: snsSender(sns.NewFromConfig(awsCfg), cfg.SNS.TopicARN),
		log:  orNop(log),
	}, nil
}

func snsSender(api snsAPI, topicARN string) sendFunc {
	return func(ctx context.Context, payload []byte, attrs map[string]string) (string, error) {
		out, err := api.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(topicARN),
			Message:  aws.String(string(payload)),
			MessageAttributes: convertAttributes(attrs, func(v string) snstypes.MessageAttributeValue {
				return snstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
			}),
		})
		if err != nil {
			return "", fmt.Errorf("sns publish to %s: %w", topicARN, err)
		}
		return aws.ToString(out.MessageId), nil
	}
}
