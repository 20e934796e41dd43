package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	out  *ssm.GetParameterOutput
	err  error
	last *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.last = in
	return f.out, f.err
}

func parameter(value *string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name:  aws.String("/chat/ark-api-key"),
		Type:  types.ParameterTypeSecureString,
		Value: value,
	}}
}

func TestGetParameterRequestsDecryption(t *testing.T) {
	api := &fakeSSM{out: parameter(aws.String("  secret-key \n"))}
	client, err := New(api)
	require.NoError(t, err)

	v, err := client.GetParameter(context.Background(), " /chat/ark-api-key ")
	require.NoError(t, err)
	require.Equal(t, "secret-key", v)
	require.Equal(t, "/chat/ark-api-key", aws.ToString(api.last.Name))
	require.True(t, aws.ToBool(api.last.WithDecryption))
}

func TestGetParameterMissingValue(t *testing.T) {
	client, err := New(&fakeSSM{out: parameter(nil)})
	require.NoError(t, err)

	_, err = client.GetParameter(context.Background(), "/chat/ark-api-key")
	require.ErrorContains(t, err, "missing value")
}

func TestGetParameterBlankValue(t *testing.T) {
	client, err := New(&fakeSSM{out: parameter(aws.String("   "))})
	require.NoError(t, err)

	_, err = client.GetParameter(context.Background(), "/chat/ark-api-key")
	require.ErrorContains(t, err, "is empty")
}

func TestGetParameterAPIError(t *testing.T) {
	cause := errors.New("access denied")
	client, err := New(&fakeSSM{err: cause})
	require.NoError(t, err)

	_, err = client.GetParameter(context.Background(), "/chat/ark-api-key")
	require.ErrorIs(t, err, cause)
}

func TestGetParameterEmptyName(t *testing.T) {
	client, err := New(&fakeSSM{})
	require.NoError(t, err)

	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "name is required")
}

func TestGetParameterUninitialized(t *testing.T) {
	var client *Client
	_, err := client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestNewNilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}
