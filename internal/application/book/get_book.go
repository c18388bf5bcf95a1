package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// GetBookUseCase 图书详情查询
type GetBookUseCase struct {
	books book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(books book.Service) *GetBookUseCase {
	return &GetBookUseCase{books: books}
}

// Execute 已下架或不存在的图书返回ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookView, error) {
	ctx, span := tracing.StartSpan(ctx, "GetBook")
	defer span.End()

	b, err := uc.books.GetByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}
