package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsFallBackOnMissingOrInvalid(t *testing.T) {
	c := map[string]string{
		"PORT":     "9090",
		"BAD_INT":  "nine",
		"FLAG":     "true",
		"INTERVAL": "15m",
		"ORIGINS":  "http://a.test, ,http://b.test",
		"EMPTY":    "",
	}

	assert.Equal(t, 9090, GetInt(c, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(c, "BAD_INT", 8080))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.False(t, GetBool(c, "MISSING", false))
	assert.Equal(t, 15*time.Minute, GetDuration(c, "INTERVAL", time.Hour))
	assert.Equal(t, time.Hour, GetDuration(c, "MISSING", time.Hour))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList(c, "ORIGINS"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))
}

func TestMergeKeepsEnvironmentValues(t *testing.T) {
	env := map[string]string{"DATABASE_URL": "from-env"}
	merged := Merge(env, map[string]string{"DATABASE_URL": "from-ssm", "SESSION_SECRET": "s3cret"})

	assert.Equal(t, "from-env", merged["DATABASE_URL"])
	assert.Equal(t, "s3cret", merged["SESSION_SECRET"])
}

type fakeParameterStore struct {
	pages [][]types.Parameter
	calls int
}

func (f *fakeParameterStore) GetParametersByPath(_ context.Context, _ *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[f.calls]}
	f.calls++
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestLoadParametersKeysByLastSegment(t *testing.T) {
	store := &fakeParameterStore{pages: [][]types.Parameter{
		{{Name: aws.String("/sideshub/prod/DATABASE_URL"), Value: aws.String("postgres://db")}},
		{{Name: aws.String("/sideshub/prod/SESSION_SECRET"), Value: aws.String("secret")}},
	}}

	params, err := loadParameters(context.Background(), store, "/sideshub/prod")
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
	assert.Equal(t, "postgres://db", params["DATABASE_URL"])
	assert.Equal(t, "secret", params["SESSION_SECRET"])
}
