// internal/common/aws/aws.go
//
// Package aws wraps the SES and SNS clients used by the outreach and
// campaign-notification workers. Credentials come from the default
// chain (env, shared config, instance role).
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}
