package book

import (
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookView 图书响应DTO
// 价格对外是两位小数的十进制数,内部以分存储
type BookView struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Category    string       `json:"category"`
	ISBN        string       `json:"isbn,omitempty"`
	Stock       int          `json:"stock"`
	CoverImage  string       `json:"coverImage,omitempty"`
	Rating      float64      `json:"rating"`
	Reviews     []ReviewView `json:"reviews"`
	AddedBy     UserRefView  `json:"addedBy"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ReviewView 评论响应DTO
type ReviewView struct {
	ID        uint        `json:"id"`
	User      UserRefView `json:"user"`
	Rating    int         `json:"rating"`
	Comment   string      `json:"comment,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// UserRefView 用户投影,只有id和用户名
type UserRefView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// NewBookView 实体 → 响应DTO
func NewBookView(b *book.Book) BookView {
	reviews := make([]ReviewView, 0, len(b.Reviews))
	for _, r := range b.Reviews {
		reviews = append(reviews, ReviewView{
			ID:        r.ID,
			User:      UserRefView(r.User),
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       CentsToPrice(b.Price),
		Category:    b.Category,
		ISBN:        b.ISBN,
		Stock:       b.Stock,
		CoverImage:  b.CoverImage,
		Rating:      b.Rating,
		Reviews:     reviews,
		AddedBy:     UserRefView(b.AddedBy),
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// CentsToPrice 分 → 元
func CentsToPrice(cents int64) float64 {
	return float64(cents) / 100
}
