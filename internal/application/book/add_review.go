package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// AddReviewUseCase 添加评论
type AddReviewUseCase struct {
	books  book.Service
	events book.EventPublisher
	log    *zap.Logger
}

// NewAddReviewUseCase 创建评论用例
func NewAddReviewUseCase(books book.Service, events book.EventPublisher, log *zap.Logger) *AddReviewUseCase {
	metrics.InitMetrics()
	return &AddReviewUseCase{books: books, events: events, log: orNop(log)}
}

// AddReviewRequest 评论请求
type AddReviewRequest struct {
	BookID    uint
	Rating    int
	Comment   string
	Requester book.Requester
}

// Execute 执行评论,返回评分重新计算后的图书
func (uc *AddReviewUseCase) Execute(ctx context.Context, req AddReviewRequest) (*BookView, error) {
	ctx, span := tracing.StartSpan(ctx, "AddReview")
	defer span.End()

	b, err := uc.books.AddReview(ctx, req.BookID, req.Requester, req.Rating, req.Comment)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.ReviewsAddedTotal.Inc()
	_ = uc.events.Publish(ctx, book.NewEvent(book.EventBookReviewed, b, req.Requester.ID))
	uc.log.Info("review added",
		zap.Uint("book_id", b.ID),
		zap.Int("rating", req.Rating),
		zap.String("by", req.Requester.Username))

	view := NewBookView(b)
	return &view, nil
}
