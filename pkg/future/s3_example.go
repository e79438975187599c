//go:build s3example
// +build s3example

// This file provides example Operations backed by AWS S3.
// It is excluded from regular builds because it requires the AWS SDK.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package future

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Object fetches one object from S3, for wrapping remote blobs in a
// Manager.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//
//	report := future.New[[]byte](future.WithName("report"))
//	data, err := report.Execute(ctx, future.S3Object(client, "my-bucket", "reports/latest.json"))
//
// Refresh replays the fetch; Silent keeps the last report rendered while
// a newer one downloads.
func S3Object(client *s3.Client, bucket, key string) Operation[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
		}
		defer out.Body.Close()

		data, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, fmt.Errorf("s3 read %s/%s: %w", bucket, key, err)
		}
		return data, nil
	}
}

// S3ObjectList fetches the keys under a prefix, paginating through the
// bucket. Useful with a silent refresh to keep a listing current
// without flicker.
func S3ObjectList(client *s3.Client, bucket, prefix string) Operation[[]string] {
	return func(ctx context.Context) ([]string, error) {
		paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		})

		var keys []string
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("s3 list %s/%s: %w", bucket, prefix, err)
			}
			for _, obj := range page.Contents {
				if obj.Key != nil {
					keys = append(keys, *obj.Key)
				}
			}
		}
		return keys, nil
	}
}
