package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// parameterStore is the slice of the SSM client used here.
type parameterStore interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM reads every parameter below parameterPath (recursively, decrypted)
// and keys it by the last path segment, so /sideshub/prod/DATABASE_URL
// becomes DATABASE_URL.
func LoadSSM(ctx context.Context, parameterPath, region string) (map[string]string, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return loadParameters(ctx, ssm.NewFromConfig(awsCfg), parameterPath)
}

func loadParameters(ctx context.Context, client parameterStore, parameterPath string) (map[string]string, error) {
	params := make(map[string]string)

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read parameters under %s: %w", parameterPath, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			params[path.Base(name)] = aws.ToString(p.Value)
		}
	}

	return params, nil
}

// Load reads the process environment and, when SSM_PARAMETER_PATH is set,
// fills in missing keys from Parameter Store.
func Load(ctx context.Context) (map[string]string, error) {
	c := New()

	parameterPath := GetString(c, "SSM_PARAMETER_PATH", "")
	if parameterPath == "" {
		return c, nil
	}

	params, err := LoadSSM(ctx, parameterPath, GetString(c, "AWS_REGION", ""))
	if err != nil {
		return c, err
	}
	return Merge(c, params), nil
}
