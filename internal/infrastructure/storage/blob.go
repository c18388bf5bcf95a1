package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist 对象不存在
var ErrNotExist = errors.New("storage: object does not exist")

// ErrInvalidKey 对象路径非法(绝对路径或越出根目录)
var ErrInvalidKey = errors.New("storage: invalid object key")

// Blob 对象存储后端
// key使用'/'分隔的相对路径,如books/book-1700000000000-xxx.png
type Blob interface {
	// Put 写入对象,r读取出错时不能留下不完整的对象
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Delete 删除对象,对象不存在时返回ErrNotExist
	Delete(ctx context.Context, key string) error
}
