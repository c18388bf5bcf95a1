package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/saga"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// UpdateBookUseCase 更新图书
// 流程:上传新封面 → 事务内加锁、鉴权、修改 → 提交后删除旧封面
// 修改失败时删除新封面,旧封面保持不变
type UpdateBookUseCase struct {
	books  book.Service
	covers book.CoverStore
	events book.EventPublisher
	log    *zap.Logger
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(books book.Service, covers book.CoverStore, events book.EventPublisher, log *zap.Logger) *UpdateBookUseCase {
	metrics.InitMetrics()
	return &UpdateBookUseCase{books: books, covers: covers, events: events, log: orNop(log)}
}

// UpdateBookRequest 更新图书请求
type UpdateBookRequest struct {
	ID        uint
	Patch     book.Patch
	Cover     *book.CoverUpload // 可选,上传后替换旧封面
	Requester book.Requester
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookView, error) {
	ctx, span := tracing.StartSpan(ctx, "UpdateBook")
	defer span.End()

	var (
		updated       *book.Book
		replacedCover string
	)
	patch := req.Patch

	s := saga.New("update_book", coverSagaTimeout, uc.log)
	if req.Cover != nil {
		var newCover string
		s.AddStep("attach_cover", func(ctx context.Context) error {
			p, err := uc.covers.Attach(ctx, *req.Cover)
			if err != nil {
				return err
			}
			newCover = p
			patch.CoverImage = &newCover
			return nil
		}, func(ctx context.Context) error {
			return uc.covers.Detach(ctx, newCover)
		})
	}
	s.AddStep("update_book", func(ctx context.Context) error {
		b, old, err := uc.books.Update(ctx, req.ID, patch, req.Requester)
		if err != nil {
			return err
		}
		updated, replacedCover = b, old
		return nil
	}, nil)

	if err := s.Execute(ctx); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 旧封面清理失败只记录日志(MediaManager内部记录),不影响更新结果
	if replacedCover != "" {
		_ = uc.covers.Detach(context.WithoutCancel(ctx), replacedCover)
	}

	metrics.BooksUpdatedTotal.Inc()
	_ = uc.events.Publish(ctx, book.NewEvent(book.EventBookUpdated, updated, req.Requester.ID))
	uc.log.Info("book updated",
		zap.Uint("book_id", updated.ID),
		zap.String("by", req.Requester.Username))

	view := NewBookView(updated)
	return &view, nil
}
