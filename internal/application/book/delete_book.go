package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// DeleteBookUseCase 下架图书(软删除,封面文件保留)
type DeleteBookUseCase struct {
	books  book.Service
	events book.EventPublisher
	log    *zap.Logger
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(books book.Service, events book.EventPublisher, log *zap.Logger) *DeleteBookUseCase {
	metrics.InitMetrics()
	return &DeleteBookUseCase{books: books, events: events, log: orNop(log)}
}

// Execute 执行下架
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint, r book.Requester) error {
	ctx, span := tracing.StartSpan(ctx, "DeleteBook")
	defer span.End()

	if err := uc.books.SoftDelete(ctx, id, r); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	metrics.BooksDeletedTotal.Inc()
	_ = uc.events.Publish(ctx, book.NewEvent(book.EventBookDeleted, &book.Book{ID: id}, r.ID))
	uc.log.Info("book deleted", zap.Uint("book_id", id), zap.String("by", r.Username))
	return nil
}
