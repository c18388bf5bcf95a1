package book

import (
	"context"
	"io"
)

// CoverUpload 上传的封面文件
// Filename和ContentType来自客户端,只用于校验,不会用于生成存储文件名
type CoverUpload struct {
	Filename    string
	ContentType string
	Size        int64 // 未知时为-1
	Content     io.Reader
}

// CoverStore 封面存储
type CoverStore interface {
	// Attach 校验并保存封面,返回对外访问路径(如/uploads/books/xxx.png)
	// 类型或大小不合法返回参数错误
	Attach(ctx context.Context, upload CoverUpload) (string, error)
	// Detach 删除封面,文件不存在或路径不归本存储管理时什么也不做
	Detach(ctx context.Context, path string) error
}
