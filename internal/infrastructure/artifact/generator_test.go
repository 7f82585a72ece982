package artifact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/domain/publication"
	"bizcard/internal/shared/logger"
)

type fakeS3 struct {
	s3iface.S3API

	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestGenerator_UploadsCardLink(t *testing.T) {
	client := &fakeS3{}
	gen := NewGenerator(PayloadRenderer{}, NewS3Store(client, "cards-bucket", ""), "https://bizcard.example/cards/%d", logger.NewNopLogger())

	ref, err := gen.Generate(context.Background(), &publication.Card{CardID: 7})
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "cards-bucket", aws.StringValue(in.Bucket))
	assert.True(t, strings.HasPrefix(aws.StringValue(in.Key), "cards/7/qr-"))
	assert.True(t, strings.HasSuffix(aws.StringValue(in.Key), ".txt"))
	assert.Equal(t, int64(len("https://bizcard.example/cards/7")), aws.Int64Value(in.ContentLength))
	assert.Equal(t, "s3://cards-bucket/"+aws.StringValue(in.Key), ref)
}

func TestGenerator_PublicBaseURL(t *testing.T) {
	client := &fakeS3{}
	gen := NewGenerator(PayloadRenderer{}, NewS3Store(client, "b", "https://cdn.example/"), "https://bizcard.example/cards/%d", logger.NewNopLogger())

	ref, err := gen.Generate(context.Background(), &publication.Card{CardID: 3})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/"+aws.StringValue(client.inputs[0].Key), ref)
}

func TestGenerator_UploadFailure(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	gen := NewGenerator(PayloadRenderer{}, NewS3Store(client, "b", ""), "https://bizcard.example/cards/%d", logger.NewNopLogger())

	_, err := gen.Generate(context.Background(), &publication.Card{CardID: 3})
	assert.ErrorContains(t, err, "access denied")
}

func TestInlineStore(t *testing.T) {
	gen := NewGenerator(PayloadRenderer{}, InlineStore{}, "https://bizcard.example/cards/%d", logger.NewNopLogger())

	ref, err := gen.Generate(context.Background(), &publication.Card{CardID: 5})
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain; charset=utf-8;base64,aHR0cHM6Ly9iaXpjYXJkLmV4YW1wbGUvY2FyZHMvNQ==", ref)
}
