// Package storage decodes uploaded recipe images and persists them either on
// the local filesystem or in an S3 bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// ErrInvalidImage is returned for payloads that are not a base64 image data URI
var ErrInvalidImage = errors.New("image must be a base64 encoded data URI like data:image/png;base64,...")

// ImageStore saves images and returns the public reference stored on the recipe
type ImageStore interface {
	Save(ctx context.Context, img Image) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a decoded upload
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>" and checks that
// the payload really is an image of the declared type.
func DecodeDataURI(uri string) (Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return Image{}, ErrInvalidImage
	}

	declared := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	ext, ok := extensions[declared]
	if !ok {
		return Image{}, fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, declared)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return Image{}, ErrInvalidImage
	}

	sniffed := http.DetectContentType(data)
	if extensions[sniffed] != ext {
		return Image{}, fmt.Errorf("%w: declared %s but content is %s", ErrInvalidImage, declared, sniffed)
	}
	return Image{Data: data, ContentType: sniffed, Extension: ext}, nil
}

// objectName is the storage key for a new upload
func objectName(img Image) string {
	return fmt.Sprintf("recipes/%s.%s", uuid.New().String(), img.Extension)
}

// Config selects and configures the image backend
type Config struct {
	Driver      string // local or s3
	MediaRoot   string
	MediaURL    string
	S3Bucket    string
	S3Region    string
	S3PublicURL string
}

// NewImageStore builds the backend named by cfg.Driver
func NewImageStore(ctx context.Context, cfg Config) (ImageStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
