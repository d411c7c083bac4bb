package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrForeignKey is returned for a delete outside the configured prefix.
var ErrForeignKey = errors.New("storage key outside upload prefix")

// ObjectAPI is the part of *s3.Client image storage uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores images as public objects under Bucket/Prefix. Keys it hands out
// always carry the prefix; PublicBaseURL + "/" + key is the image URL.
type S3 struct {
	Client        ObjectAPI
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

type S3Config struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

func NewS3WithClient(api ObjectAPI, cfg S3Config) *S3 {
	return &S3{
		Client:        api,
		Bucket:        cfg.Bucket,
		Prefix:        strings.Trim(cfg.Prefix, "/"),
		PublicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *S3) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	ext, err := ImageExt(in.Filename)
	if err != nil {
		return PutResult{}, err
	}
	key := s.prefixed(uuid.NewString() + ext)

	ct := in.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(ext)
	}
	obj := &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &key,
		Body:        r,
		ContentType: &ct,
	}
	if in.Size > 0 {
		obj.ContentLength = &in.Size
	}
	if _, err := s.Client.PutObject(ctx, obj); err != nil {
		return PutResult{}, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return PutResult{Key: key, URL: s.PublicBaseURL + "/" + key}, nil
}

// Delete removes the object for ref, which may be a key or the public URL
// Put returned. Refs outside the prefix give ErrForeignKey.
func (s *S3) Delete(ctx context.Context, ref string) error {
	key, err := s.keyOf(ref)
	if err != nil {
		return err
	}
	if _, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.Bucket,
		Key:    &key,
	}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) prefixed(name string) string {
	if s.Prefix == "" {
		return name
	}
	return s.Prefix + "/" + name
}

func (s *S3) keyOf(ref string) (string, error) {
	key := ref
	if s.PublicBaseURL != "" && strings.HasPrefix(key, s.PublicBaseURL+"/") {
		key = strings.TrimPrefix(key, s.PublicBaseURL+"/")
	}
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "://") {
		return "", fmt.Errorf("%w: %q", ErrForeignKey, ref)
	}
	if s.Prefix != "" && !strings.HasPrefix(key, s.Prefix+"/") {
		return "", fmt.Errorf("%w: %q", ErrForeignKey, ref)
	}
	return key, nil
}

func (s *S3) String() string { return fmt.Sprintf("s3(%s/%s)", s.Bucket, s.Prefix) }
