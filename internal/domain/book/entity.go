package book

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 字段长度限制
const (
	MaxTitleLen       = 200
	MaxAuthorLen      = 100
	MaxDescriptionLen = 1000
	MaxISBNLen        = 20
	MaxCommentLen     = 500
	MinRating         = 1
	MaxRating         = 5
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Reviews是Book聚合内的子实体,评分由评论推导,不能单独修改
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN为空表示未填写;非空时在所有图书(含已下架)中唯一
// 4. IsActive=false表示软删除,所有读操作不可见
// 5. Version用于乐观锁(CAS),防止并发评论丢失更新
type Book struct {
	ID          uint
	Title       string
	Author      string
	Description string
	Price       int64 // 价格(单位:分)
	Category    string
	ISBN        string
	Stock       int
	CoverImage  string // 封面相对路径,如/uploads/books/book-xxx.png
	Rating      float64
	Reviews     []Review // 按创建时间排序
	AddedBy     UserRef
	IsActive    bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRef 用户最小投影(只暴露id和用户名)
type UserRef struct {
	ID       uint
	Username string
}

// Review 评论(Book聚合内的子实体)
type Review struct {
	ID        uint
	BookID    uint
	User      UserRef
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Draft 新建图书的输入
type Draft struct {
	Title       string
	Author      string
	Description string
	Price       int64
	Category    string
	ISBN        string
	Stock       int
	CoverImage  string
}

// Patch 更新图书的输入
// 约定:nil表示不修改;非nil表示修改为该值
// Description/ISBN传空字符串表示清空,Stock传0表示清零
type Patch struct {
	Title       *string
	Author      *string
	Description *string
	Price       *int64
	Category    *string
	ISBN        *string
	Stock       *int
	CoverImage  *string
}

// IsEmpty 是否没有任何字段需要修改
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.ISBN == nil && p.Stock == nil && p.CoverImage == nil
}

// NewBook 创建新图书(工厂方法)
// 评分为0、无评论、上架状态,发布者为owner
func NewBook(d Draft, owner UserRef) (*Book, error) {
	now := time.Now()
	b := &Book{
		Title:       strings.TrimSpace(d.Title),
		Author:      strings.TrimSpace(d.Author),
		Description: strings.TrimSpace(d.Description),
		Price:       d.Price,
		Category:    strings.TrimSpace(d.Category),
		ISBN:        strings.TrimSpace(d.ISBN),
		Stock:       d.Stock,
		CoverImage:  d.CoverImage,
		Rating:      0,
		Reviews:     []Review{},
		AddedBy:     owner,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验字段约束,返回全部不合法字段
func (b *Book) Validate() error {
	var details []apperrors.FieldError
	add := func(field, msg string) {
		details = append(details, apperrors.FieldError{Field: field, Message: msg})
	}

	switch n := utf8.RuneCountInString(b.Title); {
	case n == 0:
		add("title", "Title is required")
	case n > MaxTitleLen:
		add("title", "Title must be at most 200 characters")
	}
	switch n := utf8.RuneCountInString(b.Author); {
	case n == 0:
		add("author", "Author is required")
	case n > MaxAuthorLen:
		add("author", "Author must be at most 100 characters")
	}
	if utf8.RuneCountInString(b.Description) > MaxDescriptionLen {
		add("description", "Description must be at most 1000 characters")
	}
	if b.Price < 0 {
		add("price", "Price must be a non-negative number")
	}
	if b.Category == "" {
		add("category", "Category is required")
	} else if !IsValidCategory(b.Category) {
		add("category", "Category is not supported")
	}
	if len(b.ISBN) > MaxISBNLen {
		add("isbn", "ISBN must be at most 20 characters")
	}
	if b.Stock < 0 {
		add("stock", "Stock must be a non-negative integer")
	}

	if len(details) > 0 {
		return apperrors.Validation(details...)
	}
	return nil
}

// ApplyPatch 应用更新并重新校验
// 返回被替换掉的旧封面路径(没有替换时为空)
func (b *Book) ApplyPatch(p Patch) (replacedCover string, err error) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Category != nil {
		b.Category = strings.TrimSpace(*p.Category)
	}
	if p.ISBN != nil {
		b.ISBN = strings.TrimSpace(*p.ISBN)
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	if p.CoverImage != nil && *p.CoverImage != b.CoverImage {
		replacedCover = b.CoverImage
		b.CoverImage = *p.CoverImage
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	b.UpdatedAt = time.Now()
	return replacedCover, nil
}

// HasReviewFrom 用户是否已评论过
func (b *Book) HasReviewFrom(userID uint) bool {
	for _, r := range b.Reviews {
		if r.User.ID == userID {
			return true
		}
	}
	return false
}

// AddReview 追加评论并重新计算平均分(领域行为)
// 业务规则:
// - 评分必须是1-5的整数,评论最多500字
// - 每个用户对同一本书只能评论一次
func (b *Book) AddReview(user UserRef, rating int, comment string) (*Review, error) {
	comment = strings.TrimSpace(comment)
	if err := ValidateReview(rating, comment); err != nil {
		return nil, err
	}
	if b.HasReviewFrom(user.ID) {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now()
	b.Reviews = append(b.Reviews, Review{
		BookID:    b.ID,
		User:      user,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	})
	b.recomputeRating()
	b.UpdatedAt = now
	return &b.Reviews[len(b.Reviews)-1], nil
}

// recomputeRating rating = sum / count,没有评论时为0
func (b *Book) recomputeRating() {
	if len(b.Reviews) == 0 {
		b.Rating = 0
		return
	}
	sum := 0
	for _, r := range b.Reviews {
		sum += r.Rating
	}
	b.Rating = float64(sum) / float64(len(b.Reviews))
}

// ValidateReview 校验评分和评论
func ValidateReview(rating int, comment string) error {
	var details []apperrors.FieldError
	if rating < MinRating || rating > MaxRating {
		details = append(details, apperrors.FieldError{Field: "rating", Message: "Rating must be an integer between 1 and 5"})
	}
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		details = append(details, apperrors.FieldError{Field: "comment", Message: "Comment must be at most 500 characters"})
	}
	if len(details) > 0 {
		return apperrors.Validation(details...)
	}
	return nil
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.AddedBy.ID == userID
}
