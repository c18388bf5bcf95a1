package sqlstore

import (
	"time"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. 停用账号用is_active标记，不做物理删除
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:30;not null;comment:用户名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role      string    `gorm:"size:10;not null;comment:角色(user|admin)"`
	IsActive  bool      `gorm:"not null;comment:是否启用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位
// 2. ISBN为空时存NULL,唯一索引对所有图书(含已下架)生效
// 3. is_active=false表示软删除,查询统一经过activeBooks
// 4. version用于乐观锁
type BookModel struct {
	ID          uint          `gorm:"primaryKey"`
	Title       string        `gorm:"size:200;not null;comment:书名"`
	Author      string        `gorm:"size:100;not null;comment:作者"`
	Description string        `gorm:"size:1000;comment:图书描述"`
	Price       int64         `gorm:"index:idx_books_price;not null;comment:价格(分)"`
	Category    string        `gorm:"index:idx_books_category;size:50;not null;comment:分类"`
	ISBN        *string       `gorm:"column:isbn;uniqueIndex;size:20;comment:ISBN号"`
	Stock       int           `gorm:"not null;comment:库存数量"`
	CoverImage  string        `gorm:"size:500;comment:封面相对路径"`
	Rating      float64       `gorm:"index:idx_books_rating;not null;comment:平均评分"`
	AddedByID   uint          `gorm:"index;not null;comment:发布者用户ID"`
	AddedBy     UserModel     `gorm:"foreignKey:AddedByID"`
	Reviews     []ReviewModel `gorm:"foreignKey:BookID"`
	IsActive    bool          `gorm:"index;not null;comment:是否上架"`
	Version     int64         `gorm:"not null;comment:乐观锁版本号"`
	CreatedAt   time.Time     `gorm:"index:idx_books_created_at;comment:创建时间"`
	UpdatedAt   time.Time     `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel GORM评论模型
// (book_id, user_id)唯一索引保证每个用户只能评论一次
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex:uk_reviews_book_user;not null;comment:图书ID"`
	UserID    uint      `gorm:"uniqueIndex:uk_reviews_book_user;index;not null;comment:评论用户ID"`
	User      UserModel `gorm:"foreignKey:UserID"`
	Rating    int       `gorm:"not null;comment:评分(1-5)"`
	Comment   string    `gorm:"size:500;comment:评论内容"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
