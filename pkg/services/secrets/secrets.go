// Package secrets provides the client-credential sources the token provider
// draws from: static values (env/config) or an AWS Secrets Manager secret.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/de-tools/registry-sync/pkg/services/auth"
)

// StaticSource returns fixed credentials, typically read from environment
// variables by the caller.
type StaticSource struct {
	ClientID     string
	ClientSecret string
}

func (s StaticSource) Credentials(_ context.Context) (auth.Credentials, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return auth.Credentials{}, fmt.Errorf("client id and secret must both be set")
	}
	return auth.Credentials{ClientID: s.ClientID, ClientSecret: s.ClientSecret}, nil
}

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ManagerSource reads a JSON secret with client_id/client_secret keys from
// AWS Secrets Manager on every refresh, so rotation needs no restart.
type ManagerSource struct {
	client    secretsAPI
	secretARN string
}

func NewManagerSource(ctx context.Context, secretARN string) (*ManagerSource, error) {
	if secretARN == "" {
		return nil, fmt.Errorf("secret ARN is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &ManagerSource{
		client:    secretsmanager.NewFromConfig(cfg),
		secretARN: secretARN,
	}, nil
}

func (m *ManagerSource) Credentials(ctx context.Context) (auth.Credentials, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &m.secretARN,
	})
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to read secret: %w", err)
	}
	if out.SecretString == nil {
		return auth.Credentials{}, fmt.Errorf("secret %s has no string payload", m.secretARN)
	}

	var payload struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to decode secret payload: %w", err)
	}
	if payload.ClientID == "" || payload.ClientSecret == "" {
		return auth.Credentials{}, fmt.Errorf("secret %s is missing client_id or client_secret", m.secretARN)
	}
	return auth.Credentials{ClientID: payload.ClientID, ClientSecret: payload.ClientSecret}, nil
}
