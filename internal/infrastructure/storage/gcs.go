package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBlob Google Cloud Storage存储
// 对象公开可读,由CDN或反向代理把/uploads映射到bucket
type GCSBlob struct {
	bucket       *gcs.BucketHandle
	cacheControl string
}

// NewGCSBlob 创建GCS存储,返回的close用于关闭客户端
// credentialsFile为空时使用默认凭证(GOOGLE_APPLICATION_CREDENTIALS或元数据服务)
func NewGCSBlob(ctx context.Context, bucket, credentialsFile string) (*GCSBlob, func() error, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	return NewGCSBlobFromBucket(client.Bucket(bucket)), client.Close, nil
}

// NewGCSBlobFromBucket 使用已有的bucket句柄
func NewGCSBlobFromBucket(bucket *gcs.BucketHandle) *GCSBlob {
	return &GCSBlob{bucket: bucket, cacheControl: "public, max-age=86400"}
}

// Put 上传对象
// 拷贝失败时取消context,Writer不会提交对象
func (b *GCSBlob) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.bucket.Object(key).NewWriter(ctx)
	w.ACL = []gcs.ACLRule{{Entity: gcs.AllUsers, Role: gcs.RoleReader}}
	w.ContentType = contentType
	w.CacheControl = b.cacheControl

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Delete 删除对象
func (b *GCSBlob) Delete(ctx context.Context, key string) error {
	err := b.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotExist
	}
	return err
}
