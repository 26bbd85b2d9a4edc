// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrIncompleteS3 is returned when only part of the S3 settings is given.
var ErrIncompleteS3 = errors.New("storage: s3 needs endpoint, access key and secret key")

// Client is an S3 client using path-style addressing, which CEPH, MinIO
// and Hetzner object storage require.
type Client struct {
	s3        *s3.Client
	endpoint  string
	publicURL string // CDN or direct URL of the public bucket, optional
}

// NewClient builds a client with static credentials.
func NewClient(endpoint, region, accessKey, secretKey, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, ErrIncompleteS3
	}
	endpoint = strings.TrimRight(endpoint, "/")
	return &Client{
		s3: s3.New(s3.Options{
			Region:       region,
			BaseEndpoint: aws.String(endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
			UsePathStyle: true,
		}),
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Bucket binds the client to one bucket.
func (c *Client) Bucket(name string, public bool) *Bucket {
	return &Bucket{client: c, name: name, public: public}
}

// Bucket is an ObjectStore backed by a single S3 bucket.
type Bucket struct {
	client *Client
	name   string
	public bool
}

// Put uploads an object. Public buckets get the public-read ACL so the
// site can link to images directly.
func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if b.public {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	if _, err := b.client.s3.PutObject(ctx, input); err != nil {
		return b.wrap("put", key, err)
	}
	return nil
}

// Get opens an object for reading.
func (b *Bucket) Get(ctx context.Context, key string) (*Object, error) {
	out, err := b.client.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, b.wrap("get", key, err)
	}
	return &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return b.wrap("delete", key, err)
	}
	return nil
}

func (b *Bucket) wrap(op, key string, err error) error {
	return fmt.Errorf("s3 %s %s/%s: %w", op, b.name, key, err)
}

// URL is the direct link to key in a public bucket: below the public URL
// when one is configured, else the path-style endpoint URL.
func (b *Bucket) URL(key string) string {
	if b.client.publicURL != "" {
		return b.client.publicURL + "/" + key
	}
	return b.client.endpoint + "/" + b.name + "/" + key
}
