package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func jpegPayload(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI(pngDataURI(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Extension)
	assert.NotEmpty(t, img.Data)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		uri  string
	}{
		{name: "empty", uri: ""},
		{name: "plain url", uri: "https://example.com/a.png"},
		{name: "not base64 encoded", uri: "data:image/png,rawbytes"},
		{name: "unsupported type", uri: "data:text/plain;base64,aGVsbG8="},
		{name: "bad payload", uri: "data:image/png;base64,!!!"},
		{name: "payload is not an image", uri: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))},
		{name: "jpeg declared as png", uri: "data:image/png;base64," + jpegPayload(t)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURI(tt.uri)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestDecodeDataURI_JPEGAliases(t *testing.T) {
	for _, declared := range []string{"image/jpeg", "image/jpg"} {
		img, err := DecodeDataURI("data:" + declared + ";base64," + jpegPayload(t))
		require.NoError(t, err, declared)
		assert.Equal(t, "image/jpeg", img.ContentType)
		assert.Equal(t, "jpg", img.Extension)
	}
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)

	img, err := DecodeDataURI(pngDataURI(t))
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/media/recipes/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/media/")))
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, img.Data, stored)

	require.NoError(t, store.Delete(context.Background(), ref))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// deleting twice or deleting foreign references is a no-op
	assert.NoError(t, store.Delete(context.Background(), ref))
	assert.NoError(t, store.Delete(context.Background(), "https://elsewhere/x.png"))
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, params)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SaveAndDelete(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, "recipes-bucket", "")

	img, err := DecodeDataURI(pngDataURI(t))
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "https://recipes-bucket.s3.amazonaws.com/recipes/"))

	require.Len(t, client.puts, 1)
	assert.Equal(t, "recipes-bucket", *client.puts[0].Bucket)
	assert.Equal(t, "image/png", *client.puts[0].ContentType)

	require.NoError(t, store.Delete(context.Background(), ref))
	require.Len(t, client.deletes, 1)
	assert.Equal(t, *client.puts[0].Key, *client.deletes[0].Key)
}

func TestS3Store_UploadError(t *testing.T) {
	store := newS3Store(&fakeS3{err: errors.New("access denied")}, "b", "https://cdn.example.com")

	img, err := DecodeDataURI(pngDataURI(t))
	require.NoError(t, err)

	_, err = store.Save(context.Background(), img)
	assert.ErrorContains(t, err, "access denied")
}

func TestNewImageStore_UnknownDriver(t *testing.T) {
	_, err := NewImageStore(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)
}
