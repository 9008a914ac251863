package store

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tiles")

	sink, err := NewDirSink(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	require.NoError(t, sink.Put(context.Background(), "image_00_01.png", []byte("tile")))
	assert.Equal(t, filepath.Join(dir, "image_00_01.png"), sink.Location("image_00_01.png"))

	content, err := os.ReadFile(filepath.Join(dir, "image_00_01.png"))
	require.NoError(t, err)
	assert.Equal(t, "tile", string(content))
}

func TestDirSinkErrors(t *testing.T) {
	t.Run("directory is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		writeFile(t, file, "x")

		_, err := NewDirSink(filepath.Join(file, "tiles"))
		assert.ErrorIs(t, err, tileerrors.ErrIO)
	})

	t.Run("cancelled context", func(t *testing.T) {
		sink, err := NewDirSink(t.TempDir())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sink.Put(ctx, "a_00_00.png", nil), context.Canceled)
	})

	t.Run("missing directory on write", func(t *testing.T) {
		dir := t.TempDir()
		sink, err := NewDirSink(dir)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(dir))

		err = sink.Put(context.Background(), "a_00_00.png", []byte("x"))
		assert.ErrorIs(t, err, tileerrors.ErrIO)
		assert.Contains(t, err.Error(), "write tile a_00_00.png")
	})
}

func TestDirectorySource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "image_00_01.png"), "b")
	writeFile(t, filepath.Join(dir, "image_00_00.png"), "a")
	writeFile(t, filepath.Join(dir, ".hidden"), "h")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "image_01_00.png"), "c")

	source, err := OpenSource(context.Background(), dir)
	require.NoError(t, err)

	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"image_00_00.png", "image_00_01.png"}, names)

	reader, err := source.Open(context.Background(), "image_00_01.png")
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))

	_, err = source.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, tileerrors.ErrIO)
}

func TestArchiveSource(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "tiles.zip")
	file, err := os.Create(archivePath)
	require.NoError(t, err)

	writer := zip.NewWriter(file)
	for name, content := range map[string]string{
		"image_00_00.png":        "a",
		"nested/image_00_01.png": "b",
	} {
		w, err := writer.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	source, err := OpenSource(context.Background(), archivePath)
	require.NoError(t, err)

	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"image_00_00.png", "nested/image_00_01.png"}, names)

	reader, err := source.Open(context.Background(), "nested/image_00_01.png")
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
}

func TestOpenSourceMissing(t *testing.T) {
	_, err := OpenSource(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, tileerrors.ErrIO)
}

type fakeS3 struct {
	headErr   error
	createErr error
	putErr    error
	created   []string
	objects   map[string][]byte
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeS3
		expectErr   bool
		expectBuild bool
	}{
		{name: "existing bucket", client: &fakeS3{}},
		{name: "bucket created", client: &fakeS3{headErr: errors.New("not found")}, expectBuild: true},
		{name: "bucket cannot be created", client: &fakeS3{headErr: errors.New("not found"), createErr: errors.New("denied")}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := newS3Sink(context.Background(), tt.client, "tiles", "maps/v1")
			if tt.expectErr {
				assert.ErrorIs(t, err, tileerrors.ErrIO)
				return
			}
			require.NoError(t, err)
			if tt.expectBuild {
				assert.Equal(t, []string{"tiles"}, tt.client.created)
			} else {
				assert.Empty(t, tt.client.created)
			}

			require.NoError(t, sink.Put(context.Background(), "image_00_00.png", []byte("data")))
			assert.Equal(t, []byte("data"), tt.client.objects["tiles/maps/v1/image_00_00.png"])
			assert.Equal(t, "s3://tiles/maps/v1/image_00_00.png", sink.Location("image_00_00.png"))
		})
	}
}

func TestS3SinkPutError(t *testing.T) {
	sink, err := newS3Sink(context.Background(), &fakeS3{putErr: errors.New("timeout")}, "tiles", "")
	require.NoError(t, err)

	err = sink.Put(context.Background(), "image_00_00.png", []byte("data"))
	assert.ErrorIs(t, err, tileerrors.ErrIO)
	assert.Contains(t, err.Error(), "upload tile image_00_00.png")
	assert.Equal(t, "s3://tiles/image_00_00.png", sink.Location("image_00_00.png"))
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Config{})
	assert.ErrorIs(t, err, tileerrors.ErrIO)
}
