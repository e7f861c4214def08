package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	root := t.TempDir()
	st := NewLocalStorage(root, "/media")

	name, err := st.Save(context.Background(), "posts/small.gif", strings.NewReader("GIF89a"), "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "posts/small.gif", name)
	assert.Equal(t, "/media/posts/small.gif", st.URL(name))

	data, err := os.ReadFile(filepath.Join(root, "posts", "small.gif"))
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
}

func TestLocalStorageCollision(t *testing.T) {
	st := NewLocalStorage(t.TempDir(), "/media/")
	ctx := context.Background()

	first, err := st.Save(ctx, "posts/cat.gif", strings.NewReader("one"), "image/gif")
	require.NoError(t, err)
	second, err := st.Save(ctx, "posts/cat.gif", strings.NewReader("two"), "image/gif")
	require.NoError(t, err)

	assert.Equal(t, "posts/cat.gif", first)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "posts/cat_"))
	assert.True(t, strings.HasSuffix(second, ".gif"))
}

func TestLocalStorageDelete(t *testing.T) {
	root := t.TempDir()
	st := NewLocalStorage(root, "/media/")
	ctx := context.Background()

	name, err := st.Save(ctx, "posts/cat.gif", strings.NewReader("GIF89a"), "image/gif")
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, name))

	_, err = os.Stat(filepath.Join(root, "posts", "cat.gif"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// already gone
	assert.NoError(t, st.Delete(ctx, name))
}

func TestLocalStorageStaysInRoot(t *testing.T) {
	root := t.TempDir()
	st := NewLocalStorage(root, "/media/")

	name, err := st.Save(context.Background(), "../../etc/evil.gif", strings.NewReader("x"), "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "etc/evil.gif", name)

	_, err = os.Stat(filepath.Join(root, "etc", "evil.gif"))
	assert.NoError(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; ok {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, &types.NotFound{}
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	delete(f.types, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageSave(t *testing.T) {
	fake := newFakeS3()
	st := NewS3StorageWithClient(fake, "yatube-media", "eu-west-3")
	ctx := context.Background()

	key, err := st.Save(ctx, "posts/small.gif", bytes.NewReader([]byte("GIF89a")), "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "posts/small.gif", key)
	assert.Equal(t, []byte("GIF89a"), fake.objects[key])
	assert.Equal(t, "image/gif", fake.types[key])
	assert.Equal(t, "https://yatube-media.s3.eu-west-3.amazonaws.com/posts/small.gif", st.URL(key))

	again, err := st.Save(ctx, "posts/small.gif", bytes.NewReader([]byte("GIF89a")), "image/gif")
	require.NoError(t, err)
	assert.NotEqual(t, key, again)
	assert.Len(t, fake.objects, 2)

	require.NoError(t, st.Delete(ctx, again))
	assert.Len(t, fake.objects, 1)
	assert.Contains(t, fake.objects, key)
}

func TestS3StorageHeadFailure(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("access denied")
	st := NewS3StorageWithClient(fake, "b", "r")

	_, err := st.Save(context.Background(), "posts/a.gif", strings.NewReader("x"), "image/gif")
	require.Error(t, err)
	assert.Empty(t, fake.objects)
}
