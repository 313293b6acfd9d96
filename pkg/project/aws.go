package project

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"
)

// AWSConfig returns the ambient AWS configuration (credentials, region) the
// program runs with. The configuration is resolved once and cached.
func (p *Project) AWSConfig(ctx context.Context) (aws.Config, error) {
	v, err := p.awsCache.GetOrCompute("config", func(string) (any, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "loading AWS configuration")
		}
		return cfg, nil
	})
	if err != nil {
		return aws.Config{}, err
	}
	return v.(aws.Config), nil
}

// AWSAccountID returns the account the currently configured AWS principal
// belongs to, in which the program will act. Resolved once per run.
func (p *Project) AWSAccountID(ctx context.Context) (string, error) {
	cfg, err := p.AWSConfig(ctx)
	if err != nil {
		return "", err
	}
	v, err := p.awsCache.GetOrCompute("account_id", func(string) (any, error) {
		ident, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return nil, errors.Wrap(err, "resolving AWS caller identity")
		}
		return aws.ToString(ident.Account), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// AWSRegion returns the currently configured AWS region.
func (p *Project) AWSRegion(ctx context.Context) (string, error) {
	cfg, err := p.AWSConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.Region, nil
}
