package dto

import (
	"math"
	"strings"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// maxPrice 价格上限(元),超出后转换为分会溢出
const maxPrice = 1e10

// CreateBookRequest 发布图书请求
// 同时支持JSON和multipart/form-data(带coverImage文件时),两种格式字段名相同
type CreateBookRequest struct {
	Title       string  `json:"title" form:"title" example:"Dune"`
	Author      string  `json:"author" form:"author" example:"Frank Herbert"`
	Description string  `json:"description" form:"description" example:"A desert planet."`
	Price       float64 `json:"price" form:"price" example:"9.99"`
	Category    string  `json:"category" form:"category" example:"Science Fiction"`
	ISBN        string  `json:"isbn" form:"isbn" example:"9780441013593"`
	Stock       int     `json:"stock" form:"stock" example:"5"`
}

// ToDraft 转换为领域输入,价格(元)四舍五入为分
func (r CreateBookRequest) ToDraft() (book.Draft, error) {
	cents, err := priceToCents(r.Price)
	if err != nil {
		return book.Draft{}, err
	}
	return book.Draft{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Price:       cents,
		Category:    r.Category,
		ISBN:        r.ISBN,
		Stock:       r.Stock,
	}, nil
}

// UpdateBookRequest 更新图书请求
// 未出现的字段保持不变;description/isbn传空字符串表示清空
type UpdateBookRequest struct {
	Title       *string  `json:"title" form:"title"`
	Author      *string  `json:"author" form:"author"`
	Description *string  `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price"`
	Category    *string  `json:"category" form:"category"`
	ISBN        *string  `json:"isbn" form:"isbn"`
	Stock       *int     `json:"stock" form:"stock"`
}

// ToPatch 转换为领域补丁
func (r UpdateBookRequest) ToPatch() (book.Patch, error) {
	p := book.Patch{
		Title:       trimmed(r.Title),
		Author:      trimmed(r.Author),
		Description: trimmed(r.Description),
		Category:    trimmed(r.Category),
		ISBN:        trimmed(r.ISBN),
		Stock:       r.Stock,
	}
	if r.Price != nil {
		cents, err := priceToCents(*r.Price)
		if err != nil {
			return book.Patch{}, err
		}
		p.Price = &cents
	}
	return p, nil
}

// ReviewRequest 评论请求
type ReviewRequest struct {
	Rating  *int   `json:"rating" form:"rating" binding:"required" example:"5"`
	Comment string `json:"comment" form:"comment" example:"Great book"`
}

// ListBooksQuery 图书列表查询参数
// 零值使用默认值:第1页、每页12条、按createdAt倒序
type ListBooksQuery struct {
	Page      int    `form:"page" example:"1"`
	Limit     int    `form:"limit" example:"12"`
	Search    string `form:"search" binding:"max=100" example:"dune"`
	Category  string `form:"category" example:"Fiction"`
	SortBy    string `form:"sortBy" example:"createdAt"`
	SortOrder string `form:"sortOrder" example:"desc"`
}

// ToRequest 转换为用例请求
func (q ListBooksQuery) ToRequest() appbook.ListBooksRequest {
	return appbook.ListBooksRequest{
		Page:      q.Page,
		Limit:     q.Limit,
		Search:    strings.TrimSpace(q.Search),
		Category:  strings.TrimSpace(q.Category),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// BookBody 单本图书响应
type BookBody struct {
	Book appbook.BookView `json:"book"`
}

// BookMessageBody 带提示信息的图书响应
type BookMessageBody struct {
	Message string           `json:"message" example:"Book added successfully"`
	Book    appbook.BookView `json:"book"`
}

// CategoriesBody 分类列表响应
type CategoriesBody struct {
	Categories []string `json:"categories"`
}

func priceToCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price > maxPrice {
		return 0, apperrors.InvalidField("price", "Price is invalid")
	}
	return int64(math.Round(price * 100)), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
