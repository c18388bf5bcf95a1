package book

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// maxCASAttempts 乐观锁冲突时的最大尝试次数
const maxCASAttempts = 3

// Service 图书领域服务接口
// 设计说明:
// 1. 所有修改图书的操作都经过mutate:加锁 → 权限检查 → 修改,不会漏掉权限检查
// 2. 评分只能由AddReview重新计算,Update不会写rating
type Service interface {
	// Create 发布图书
	// 业务规则:
	// - 字段长度、价格、库存、分类合法
	// - ISBN非空时不能与任何图书(含已下架)重复
	Create(ctx context.Context, d Draft, r Requester) (*Book, error)

	// GetByID 查询上架图书详情,已下架返回ErrBookNotFound
	GetByID(ctx context.Context, id uint) (*Book, error)

	// Update 更新图书,只修改Patch中非nil的字段
	// 返回更新后的图书和被替换的旧封面路径(由调用方在提交后清理)
	Update(ctx context.Context, id uint, p Patch, r Requester) (*Book, string, error)

	// SoftDelete 下架图书(软删除)
	SoftDelete(ctx context.Context, id uint, r Requester) error

	// List 分页查询上架图书,附带所有上架图书的分类
	List(ctx context.Context, params ListParams) (*ListResult, error)

	// Categories 所有上架图书中出现过的分类
	Categories(ctx context.Context) ([]string, error)

	// AddReview 添加评论并重新计算评分
	AddReview(ctx context.Context, id uint, r Requester, rating int, comment string) (*Book, error)
}

// Option 领域服务可选配置
type Option func(*service)

// WithCategoryCache 使用分类缓存
func WithCategoryCache(c CategoryCache) Option {
	return func(s *service) { s.cache = c }
}

// WithPageSizes 设置默认/最大分页大小
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *service) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize >= s.defaultPageSize {
			s.maxPageSize = maxSize
		}
	}
}

// service 领域服务实现
type service struct {
	repo            Repository
	tx              Transactor
	cache           CategoryCache
	defaultPageSize int
	maxPageSize     int
}

// NewService 创建图书领域服务
func NewService(repo Repository, tx Transactor, opts ...Option) Service {
	s := &service{
		repo:            repo,
		tx:              tx,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 发布图书
func (s *service) Create(ctx context.Context, d Draft, r Requester) (*Book, error) {
	if err := requireActive(r); err != nil {
		return nil, err
	}

	// 1. 构造实体并校验字段
	b, err := NewBook(d, r.Ref())
	if err != nil {
		return nil, err
	}

	// 2. ISBN唯一性(唯一索引兜底并发情况)
	if b.ISBN != "" {
		exists, err := s.repo.ExistsByISBN(ctx, b.ISBN, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrISBNDuplicate
		}
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.invalidateCategories(ctx)
	return b, nil
}

// GetByID 根据ID获取图书
func (s *service) GetByID(ctx context.Context, id uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// Update 更新图书
func (s *service) Update(ctx context.Context, id uint, p Patch, r Requester) (*Book, string, error) {
	if err := requireActive(r); err != nil {
		return nil, "", err
	}

	var replacedCover string
	err := s.mutate(ctx, id, r, func(ctx context.Context, b *Book) error {
		oldCover, err := b.ApplyPatch(p)
		if err != nil {
			return err
		}

		if p.ISBN != nil && b.ISBN != "" {
			exists, err := s.repo.ExistsByISBN(ctx, b.ISBN, b.ID)
			if err != nil {
				return err
			}
			if exists {
				return ErrISBNDuplicate
			}
		}

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		replacedCover = oldCover
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.invalidateCategories(ctx)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return updated, replacedCover, nil
}

// SoftDelete 下架图书
func (s *service) SoftDelete(ctx context.Context, id uint, r Requester) error {
	if err := requireActive(r); err != nil {
		return err
	}

	err := s.mutate(ctx, id, r, func(ctx context.Context, b *Book) error {
		b.IsActive = false
		return s.repo.Deactivate(ctx, b)
	})
	if err != nil {
		return err
	}

	s.invalidateCategories(ctx)
	return nil
}

// List 分页查询图书列表
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	params = params.Normalize(s.defaultPageSize, s.maxPageSize)

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
		Page:       params.Page,
		PageSize:   params.PageSize,
		Categories: categories,
	}, nil
}

// Categories 分类列表(优先读缓存)
func (s *service) Categories(ctx context.Context) ([]string, error) {
	if s.cache == nil {
		return s.repo.DistinctCategories(ctx)
	}
	return s.cache.GetOrLoad(ctx, s.repo.DistinctCategories)
}

// AddReview 添加评论
// 流程:事务内加锁读取图书 → 检查重复评论 → 追加评论并重算评分 → CAS写回
func (s *service) AddReview(ctx context.Context, id uint, r Requester, rating int, comment string) (*Book, error) {
	if err := requireActive(r); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if err := ValidateReview(rating, comment); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		review, err := b.AddReview(r.Ref(), rating, comment)
		if err != nil {
			return err
		}
		return s.repo.AppendReview(ctx, b, review)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// mutate 修改图书的统一入口:加锁读取 → 权限检查 → 执行修改
func (s *service) mutate(ctx context.Context, id uint, r Requester, fn func(ctx context.Context, b *Book) error) error {
	if id == 0 {
		return ErrBookNotFound
	}
	return s.withRetry(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := RequireOwnerOrAdmin(b.AddedBy.ID, r); err != nil {
			return err
		}
		return fn(ctx, b)
	})
}

// withRetry 在事务中执行fn,版本冲突时整体重试
func (s *service) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err = s.tx.Transaction(ctx, fn)
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func (s *service) invalidateCategories(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func requireActive(r Requester) error {
	if r.ID == 0 {
		return apperrors.ErrUnauthorized
	}
	if !r.Active {
		return apperrors.ErrAccountInactive
	}
	return nil
}
