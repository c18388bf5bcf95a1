package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// coverDir 封面在存储中的目录
const coverDir = "books"

// 扩展名和Content-Type必须同时在白名单内
var (
	allowedCoverExts = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
	}
	allowedCoverTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
	}
)

var errCoverTooLarge = errors.New("cover exceeds size limit")

// MediaManager 封面管理,实现book.CoverStore
type MediaManager struct {
	blob    Blob
	maxSize int64
	prefix  string
	log     *zap.Logger
	now     func() time.Time
}

var _ book.CoverStore = (*MediaManager)(nil)

// NewMediaManager 创建封面管理器
// urlPrefix是封面对外访问路径的前缀,如/uploads
func NewMediaManager(blob Blob, maxSize int64, urlPrefix string, log *zap.Logger) *MediaManager {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.InitMetrics()
	return &MediaManager{
		blob:    blob,
		maxSize: maxSize,
		prefix:  strings.TrimRight(urlPrefix, "/"),
		log:     log.Named("media"),
		now:     time.Now,
	}
}

// Attach 校验并保存封面
// 文件名由服务端生成:book-<毫秒时间戳>-<uuid><扩展名>
func (m *MediaManager) Attach(ctx context.Context, upload book.CoverUpload) (string, error) {
	ext, err := m.check(upload)
	if err != nil {
		metrics.IncCounterVec(metrics.CoverUploadsTotal, map[string]string{"result": "rejected"})
		return "", err
	}

	name := fmt.Sprintf("book-%d-%s%s", m.now().UnixMilli(), uuid.NewString(), ext)
	key := path.Join(coverDir, name)

	lr := &limitedReader{r: upload.Content, remaining: m.maxSize}
	if err := m.blob.Put(ctx, key, lr, normalizeContentType(upload.ContentType)); err != nil {
		if errors.Is(err, errCoverTooLarge) {
			metrics.IncCounterVec(metrics.CoverUploadsTotal, map[string]string{"result": "rejected"})
			return "", m.tooLarge()
		}
		metrics.IncCounterVec(metrics.CoverUploadsTotal, map[string]string{"result": "failure"})
		return "", &apperrors.AppError{
			Code:    apperrors.ErrCodeStorageError,
			Message: "Cover upload failed",
			Err:     fmt.Errorf("put cover %s: %w", key, err),
		}
	}

	metrics.IncCounterVec(metrics.CoverUploadsTotal, map[string]string{"result": "success"})
	metrics.CoverUploadBytes.Observe(float64(m.maxSize - lr.remaining))
	return m.prefix + "/" + key, nil
}

// Detach 删除封面(尽力而为)
// 文件已不存在视为成功;其他错误记录日志并返回,调用方通常忽略
func (m *MediaManager) Detach(ctx context.Context, coverPath string) error {
	key, ok := m.keyOf(coverPath)
	if !ok {
		return nil
	}
	err := m.blob.Delete(ctx, key)
	if err == nil || errors.Is(err, ErrNotExist) {
		return nil
	}
	metrics.CoverCleanupFailuresTotal.Inc()
	m.log.Warn("delete cover failed", zap.String("key", key), zap.Error(err))
	return err
}

func (m *MediaManager) check(upload book.CoverUpload) (string, error) {
	ext := strings.ToLower(path.Ext(upload.Filename))
	if !allowedCoverExts[ext] || !allowedCoverTypes[normalizeContentType(upload.ContentType)] {
		return "", apperrors.InvalidField("coverImage", "Only image files are allowed")
	}
	if upload.Size > m.maxSize {
		return "", m.tooLarge()
	}
	if upload.Content == nil {
		return "", apperrors.InvalidField("coverImage", "Cover image is empty")
	}
	return ext, nil
}

func (m *MediaManager) tooLarge() error {
	return apperrors.InvalidField("coverImage", fmt.Sprintf("File too large (max %dMB)", m.maxSize>>20))
}

// keyOf 对外路径 → 存储key,不是本管理器生成的路径返回false
func (m *MediaManager) keyOf(coverPath string) (string, bool) {
	rest, ok := strings.CutPrefix(coverPath, m.prefix+"/")
	if !ok || !strings.HasPrefix(rest, coverDir+"/") {
		return "", false
	}
	return rest, true
}

// normalizeContentType 去掉参数部分并转小写,如"image/PNG; charset=binary" → "image/png"
func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// limitedReader 读取超过remaining字节时返回errCoverTooLarge
// Size来自客户端声明,不可信,实际大小以读到的字节为准
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errCoverTooLarge
	}
	// 多读一个字节用来判断是否超限
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errCoverTooLarge
	}
	return n, err
}
