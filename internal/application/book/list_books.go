package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// ListBooksUseCase 图书列表查询用例
// 支持分页、关键词搜索、分类筛选和排序,同时返回所有上架图书的分类
type ListBooksUseCase struct {
	books book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(books book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{books: books}
}

// ListBooksRequest 列表查询请求
// 零值字段使用默认值:第1页、每页12条、按createdAt倒序
type ListBooksRequest struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	SortBy    string
	SortOrder string
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	Books       []BookView `json:"books"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Total       int64      `json:"total"`
	Categories  []string   `json:"categories"`
}

// Execute 执行列表查询
// 页码超出范围时返回空列表,不是错误
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "ListBooks")
	defer span.End()

	result, err := uc.books.List(ctx, book.ListParams{
		Page:      req.Page,
		PageSize:  req.Limit,
		Search:    req.Search,
		Category:  req.Category,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("books.total", result.Total),
		attribute.Int("books.page", result.Page),
	)

	views := make([]BookView, 0, len(result.Items))
	for _, b := range result.Items {
		views = append(views, NewBookView(b))
	}
	categories := result.Categories
	if categories == nil {
		categories = []string{}
	}

	return &ListBooksResponse{
		Books:       views,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Total:       result.Total,
		Categories:  categories,
	}, nil
}

// Categories 可选分类(发布表单使用的固定集合)
func Categories() []string {
	out := make([]string, len(book.Categories))
	copy(out, book.Categories)
	return out
}
