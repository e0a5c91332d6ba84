// Package testutil provides LocalStack integration test utilities.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

const localstackRegion = "us-east-1"

// SetupLocalStackTest starts a LocalStack container and returns an S3 client
// pointed at it, with path-style addressing and static test credentials. The
// container is terminated through t.Cleanup. Skipped in short mode.
func SetupLocalStackTest(t *testing.T) *s3.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("starting LocalStack: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating LocalStack: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolving LocalStack host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("resolving LocalStack port: %v", err)
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(localstackRegion),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     "test",
					SecretAccessKey: "test",
				}, nil
			})),
	)
	if err != nil {
		t.Fatalf("loading AWS config: %v", err)
	}

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// MakeTestBucket creates a uniquely named bucket and registers a cleanup that
// drains and deletes it after the test.
func MakeTestBucket(t *testing.T, client *s3.Client, prefix string) string {
	t.Helper()

	ctx := context.Background()
	name := GenerateTestBucketName(prefix)

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}); err != nil {
		t.Fatalf("creating bucket %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := drainBucket(context.Background(), client, name); err != nil {
			t.Logf("cleaning up bucket %s: %v", name, err)
		}
	})

	return name
}

// drainBucket deletes every object in the bucket, then the bucket itself.
func drainBucket(ctx context.Context, client *s3.Client, name string) error {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(name)}
	for {
		page, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		if len(page.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
			for _, obj := range page.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
			}
			if _, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(name),
				Delete: &types.Delete{Objects: ids},
			}); err != nil {
				return fmt.Errorf("deleting objects: %w", err)
			}
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}

	if _, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	}); err != nil {
		return fmt.Errorf("deleting bucket: %w", err)
	}
	return nil
}
