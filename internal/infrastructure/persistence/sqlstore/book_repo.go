package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// activeBooks 只保留上架图书,所有面向读者的查询都必须经过它
func activeBooks(db *gorm.DB) *gorm.DB {
	return db.Where("books.is_active = ?", true)
}

// withDetail 预加载发布者和评论,用户只取id和用户名
func withDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("AddedBy", selectUserRef).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at ASC, reviews.id ASC")
		}).
		Preload("Reviews.User", selectUserRef)
}

func selectUserRef(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username")
}

// 排序字段 → 列名
var sortColumns = map[string]string{
	book.SortByCreatedAt: "created_at",
	book.SortByUpdatedAt: "updated_at",
	book.SortByTitle:     "title",
	book.SortByAuthor:    "author",
	book.SortByPrice:     "price",
	book.SortByRating:    "rating",
	book.SortByStock:     "stock",
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	// 关联对象(AddedBy/Reviews)不随图书写入
	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "failed to create book")
	}

	b.ID = model.ID
	b.Version = model.Version
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 查询上架图书详情
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Scopes(activeBooks, withDetail).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "failed to query book")
	}
	return toBookEntity(&model), nil
}

// LockByID 悲观锁查询图书
// SELECT ... FOR UPDATE锁定行,必须使用getDB(ctx)参与事务;sqlite不支持行锁,靠单连接串行化
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	db := getDB(ctx, r.db)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model BookModel
	err := db.Scopes(activeBooks, withDetail).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "failed to lock book")
	}
	return toBookEntity(&model), nil
}

// ExistsByISBN ISBN是否已被使用
// 有意不加activeBooks:已下架图书的ISBN同样不能复用
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	query := getDB(ctx, r.db).Model(&BookModel{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "failed to check isbn")
	}
	return count > 0, nil
}

// Update 更新可编辑字段
// UPDATE books SET ..., version = version + 1 WHERE id = ? AND version = ? AND is_active
// rating只由AppendReview写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	return r.casUpdate(ctx, b, map[string]interface{}{
		"title":       b.Title,
		"author":      b.Author,
		"description": b.Description,
		"price":       b.Price,
		"category":    b.Category,
		"isbn":        nullableString(b.ISBN),
		"stock":       b.Stock,
		"cover_image": b.CoverImage,
	}, book.ErrISBNDuplicate)
}

// Deactivate 软删除
func (r *bookRepository) Deactivate(ctx context.Context, b *book.Book) error {
	return r.casUpdate(ctx, b, map[string]interface{}{
		"is_active": false,
	}, nil)
}

// AppendReview 插入评论并写回评分
// 两条语句必须在同一事务中,版本冲突时整体回滚
func (r *bookRepository) AppendReview(ctx context.Context, b *book.Book, review *book.Review) error {
	db := getDB(ctx, r.db)

	model := &ReviewModel{
		BookID:    b.ID,
		UserID:    review.User.ID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrAlreadyReviewed
		}
		return apperrors.Wrap(err, "failed to create review")
	}
	review.ID = model.ID

	return r.casUpdate(ctx, b, map[string]interface{}{
		"rating": b.Rating,
	}, nil)
}

// casUpdate 基于版本号的条件更新,成功后回填Version
func (r *bookRepository) casUpdate(ctx context.Context, b *book.Book, fields map[string]interface{}, dupErr error) error {
	now := time.Now()
	fields["version"] = gorm.Expr("version + ?", 1)
	fields["updated_at"] = now

	result := getDB(ctx, r.db).
		Model(&BookModel{}).
		Scopes(activeBooks).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(fields)
	if result.Error != nil {
		if dupErr != nil && isDuplicateError(result.Error) {
			return dupErr
		}
		return apperrors.Wrap(result.Error, "failed to update book")
	}
	if result.RowsAffected == 0 {
		return book.ErrVersionConflict
	}

	b.Version++
	b.UpdatedAt = now
	return nil
}

// List 分页查询上架图书
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	db := getDB(ctx, r.db)

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&BookModel{}).Scopes(activeBooks)
		if params.Search != "" {
			pattern := containsPattern(params.Search)
			db = db.Where(
				"(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')",
				pattern, pattern, pattern,
			)
		}
		if params.Category != "" {
			db = db.Where("category = ?", params.Category)
		}
		return db
	}

	var total int64
	if err := db.Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count books")
	}
	if total == 0 || params.Offset() >= int(total) {
		return []*book.Book{}, total, nil
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	desc := params.SortOrder != book.SortAsc

	var models []BookModel
	err := db.Scopes(filter, withDetail).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list books")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// DistinctCategories 上架图书的分类(去重、排序)
func (r *bookRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := getDB(ctx, r.db).
		Model(&BookModel{}).
		Scopes(activeBooks).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query categories")
	}
	return categories, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price,
		Category:    b.Category,
		ISBN:        nullableString(b.ISBN),
		Stock:       b.Stock,
		CoverImage:  b.CoverImage,
		Rating:      b.Rating,
		AddedByID:   b.AddedBy.ID,
		IsActive:    b.IsActive,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(m *BookModel) *book.Book {
	reviews := make([]book.Review, len(m.Reviews))
	for i, rm := range m.Reviews {
		reviews[i] = book.Review{
			ID:        rm.ID,
			BookID:    rm.BookID,
			User:      book.UserRef{ID: rm.UserID, Username: rm.User.Username},
			Rating:    rm.Rating,
			Comment:   rm.Comment,
			CreatedAt: rm.CreatedAt,
		}
	}
	return &book.Book{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		ISBN:        derefString(m.ISBN),
		Stock:       m.Stock,
		CoverImage:  m.CoverImage,
		Rating:      m.Rating,
		Reviews:     reviews,
		AddedBy:     book.UserRef{ID: m.AddedByID, Username: m.AddedBy.Username},
		IsActive:    m.IsActive,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
