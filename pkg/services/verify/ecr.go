// Package verify preflights ONBOARD actions: it assumes the account's
// cross-account role with the external id and checks the ECR registry
// answers, so registrations with broken credentials are caught before they
// reach the vendor directory.
package verify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/rs/zerolog"
)

const roleSessionName = "registry-sync-verify"

type ECRVerifier struct {
	base      aws.Config
	stsClient *sts.Client
}

func NewECRVerifier(ctx context.Context) (*ECRVerifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &ECRVerifier{
		base:      cfg,
		stsClient: sts.NewFromConfig(cfg),
	}, nil
}

// VerifyRegistry assumes the account role and describes the registry. The
// assumed credential is scoped to this call and never cached across
// accounts.
func (v *ECRVerifier) VerifyRegistry(ctx context.Context, registry domain.DiscoveredRegistry, account domain.Account) error {
	logger := zerolog.Ctx(ctx)

	provider := stscreds.NewAssumeRoleProvider(v.stsClient, account.IAMRoleARN,
		func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
			o.ExternalID = aws.String(account.ExternalID)
		})

	cfg := v.base.Copy()
	cfg.Region = registry.Region
	cfg.Credentials = aws.NewCredentialsCache(provider)

	client := ecr.NewFromConfig(cfg)
	out, err := client.DescribeRegistry(ctx, &ecr.DescribeRegistryInput{})
	if err != nil {
		return fmt.Errorf("failed to describe registry in account %s: %w", account.ID, err)
	}
	if out.RegistryId != nil && *out.RegistryId != registry.AccountID {
		return fmt.Errorf("registry belongs to account %s, expected %s", *out.RegistryId, registry.AccountID)
	}

	logger.Debug().
		Str("registry", registry.URL).
		Str("account_id", account.ID).
		Msg("registry verified")
	return nil
}
