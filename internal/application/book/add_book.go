package book

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/saga"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// coverSagaTimeout 封面上传+入库的整体超时
const coverSagaTimeout = 30 * time.Second

// AddBookUseCase 发布图书
// 有封面时封面文件和图书记录通过saga协调:入库失败会删除刚上传的封面
type AddBookUseCase struct {
	books  book.Service
	covers book.CoverStore
	events book.EventPublisher
	log    *zap.Logger
}

// NewAddBookUseCase 创建发布图书用例
func NewAddBookUseCase(books book.Service, covers book.CoverStore, events book.EventPublisher, log *zap.Logger) *AddBookUseCase {
	metrics.InitMetrics()
	return &AddBookUseCase{books: books, covers: covers, events: events, log: orNop(log)}
}

// AddBookRequest 发布图书请求
type AddBookRequest struct {
	Draft     book.Draft
	Cover     *book.CoverUpload // 可选
	Requester book.Requester
}

// Execute 执行发布
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookView, error) {
	ctx, span := tracing.StartSpan(ctx, "AddBook")
	defer span.End()

	var created *book.Book
	draft := req.Draft

	s := saga.New("add_book", coverSagaTimeout, uc.log)
	if req.Cover != nil {
		s.AddStep("attach_cover", func(ctx context.Context) error {
			p, err := uc.covers.Attach(ctx, *req.Cover)
			if err != nil {
				return err
			}
			draft.CoverImage = p
			return nil
		}, func(ctx context.Context) error {
			return uc.covers.Detach(ctx, draft.CoverImage)
		})
	}
	s.AddStep("create_book", func(ctx context.Context) error {
		b, err := uc.books.Create(ctx, draft, req.Requester)
		if err != nil {
			return err
		}
		created = b
		return nil
	}, nil)

	if err := s.Execute(ctx); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.BooksCreatedTotal.Inc()
	_ = uc.events.Publish(ctx, book.NewEvent(book.EventBookCreated, created, req.Requester.ID))
	uc.log.Info("book added",
		zap.Uint("book_id", created.ID),
		zap.String("title", created.Title),
		zap.String("by", req.Requester.Username))

	view := NewBookView(created)
	return &view, nil
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
