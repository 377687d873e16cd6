package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var errEmptySecret = errors.New("secret has neither a string nor a binary payload")

// secretGetter is the subset of the Secrets Manager client used here.
type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsOverlay is the JSON document stored under the configured secret name.
// SourceAPIKeys is keyed by data source name.
type SecretsOverlay struct {
	DatabasePassword string            `json:"database_password"`
	ClassifierAPIKey string            `json:"classifier_api_key"`
	SourceAPIKeys    map[string]string `json:"source_api_keys"`
}

func fetchSecrets(ctx context.Context, getter secretGetter, secretName string) (*SecretsOverlay, error) {
	out, err := getter.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %q: %w", secretName, err)
	}
	return parseSecretData(out)
}

func parseSecretData(out *secretsmanager.GetSecretValueOutput) (*SecretsOverlay, error) {
	var payload []byte
	switch {
	case out.SecretString != nil:
		payload = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		payload = out.SecretBinary
	default:
		return nil, errEmptySecret
	}

	overlay := &SecretsOverlay{}
	if err := json.Unmarshal(payload, overlay); err != nil {
		return nil, fmt.Errorf("decode secret payload: %w", err)
	}
	return overlay, nil
}

// overlaySecretsOnConfig copies non-empty secrets over the file values.
// Source keys only apply to remote sources.
func overlaySecretsOnConfig(cfg *Config, overlay *SecretsOverlay) {
	if overlay.DatabasePassword != "" {
		cfg.Database.Password = overlay.DatabasePassword
	}
	if overlay.ClassifierAPIKey != "" {
		cfg.Classifier.APIKey = overlay.ClassifierAPIKey
	}
	for i := range cfg.DataIngestion.Sources {
		src := &cfg.DataIngestion.Sources[i]
		if src.Type != SourceTypeRemote {
			continue
		}
		if key := overlay.SourceAPIKeys[src.Name]; key != "" {
			src.APIKey = key
		}
	}
}

func applySecrets(ctx context.Context, cfg *Config, getter secretGetter, secretName string) error {
	overlay, err := fetchSecrets(ctx, getter, secretName)
	if err != nil {
		return err
	}
	overlaySecretsOnConfig(cfg, overlay)
	return nil
}

// LoadSecretsFromAWS overlays secrets from AWS Secrets Manager onto cfg.
func LoadSecretsFromAWS(ctx context.Context, cfg *Config, region string, secretName string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	return applySecrets(ctx, cfg, secretsmanager.NewFromConfig(awsCfg), secretName)
}
