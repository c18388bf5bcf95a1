package book

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在或已下架
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已被其他图书(含已下架)使用
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	// ErrAlreadyReviewed 重复评论
	ErrAlreadyReviewed = apperrors.ErrAlreadyReviewed

	// ErrNotOwner 既不是发布者也不是管理员
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "Not authorized to modify this book")

	// ErrVersionConflict 乐观锁冲突,服务层会重试,重试耗尽后返回给客户端
	ErrVersionConflict = apperrors.New(apperrors.ErrCodeBusinessError, "Book was modified concurrently, please retry")
)
