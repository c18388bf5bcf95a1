package book

import (
	"context"
	"strings"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 除ExistsByISBN外,所有读操作只能看到上架(IsActive)的图书
// 3. 写操作基于Version做CAS,冲突时返回ErrVersionConflict
type Repository interface {
	// Create 创建图书,成功后回填ID
	// ISBN唯一索引冲突返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 查询图书详情(含评论,用户只投影id和用户名)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// ExistsByISBN ISBN是否已被使用(包括已下架的图书)
	// excludeID非0时排除该图书自身
	ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)

	// Update 持久化可编辑字段(不会覆盖rating和评论)
	Update(ctx context.Context, book *Book) error

	// Deactivate 软删除
	Deactivate(ctx context.Context, book *Book) error

	// AppendReview 插入评论并写回重新计算的评分
	// 同一用户重复评论(唯一索引冲突)返回ErrAlreadyReviewed
	AppendReview(ctx context.Context, book *Book, review *Review) error

	// List 分页查询,返回当前页图书和总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// DistinctCategories 所有上架图书中出现过的分类(排序后)
	DistinctCategories(ctx context.Context) ([]string, error)
}

// Transactor 事务管理接口
// fn中的ctx携带事务,仓储通过ctx复用同一个事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CategoryCache 分类列表缓存
type CategoryCache interface {
	// GetOrLoad 缓存未命中时调用load并写回缓存
	GetOrLoad(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error)
	// Invalidate 图书写操作后失效缓存
	Invalidate(ctx context.Context)
}

// 排序字段
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByTitle     = "title"
	SortByAuthor    = "author"
	SortByPrice     = "price"
	SortByRating    = "rating"
	SortByStock     = "stock"

	SortAsc  = "asc"
	SortDesc = "desc"
)

var sortableFields = map[string]bool{
	SortByCreatedAt: true,
	SortByUpdatedAt: true,
	SortByTitle:     true,
	SortByAuthor:    true,
	SortByPrice:     true,
	SortByRating:    true,
	SortByStock:     true,
}

// 分页默认值
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ListParams 列表查询参数
type ListParams struct {
	Page      int    // 页码(从1开始)
	PageSize  int    // 每页数量
	Search    string // 搜索标题、作者、描述(不区分大小写)
	Category  string // 分类精确匹配
	SortBy    string // 见SortByXxx
	SortOrder string // asc | desc
}

// Normalize 补全默认值
// - page < 1 按第1页处理
// - pageSize <= 0 使用默认值,超过上限截断
// - 不支持的排序字段回退到createdAt,排序方向只认asc,其余按desc
func (p ListParams) Normalize(defaultSize, maxSize int) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	p.Search = strings.TrimSpace(p.Search)
	p.Category = strings.TrimSpace(p.Category)
	if !sortableFields[p.SortBy] {
		p.SortBy = SortByCreatedAt
	}
	if strings.EqualFold(p.SortOrder, SortAsc) {
		p.SortOrder = SortAsc
	} else {
		p.SortOrder = SortDesc
	}
	return p
}

// Offset 分页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListResult 列表查询结果
type ListResult struct {
	Items      []*Book
	Total      int64
	TotalPages int
	Page       int
	PageSize   int
	Categories []string
}
