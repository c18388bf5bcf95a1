package book

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func validDraft() Draft {
	return Draft{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Price:    1999,
		Category: "Science Fiction",
		Stock:    5,
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	fields := make([]string, 0, len(appErr.Details))
	for _, d := range appErr.Details {
		fields = append(fields, d.Field)
	}
	return fields
}

func TestNewBook(t *testing.T) {
	d := validDraft()
	d.Title = "  Dune  "
	b, err := NewBook(d, UserRef{ID: 1, Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "Dune", b.Title)
	assert.Zero(t, b.Rating)
	assert.Empty(t, b.Reviews)
	assert.NotNil(t, b.Reviews)
	assert.True(t, b.IsActive)
	assert.Equal(t, uint(1), b.AddedBy.ID)
}

func TestNewBook_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Draft)
		fields []string
	}{
		{"missing title", func(d *Draft) { d.Title = "   " }, []string{"title"}},
		{"title too long", func(d *Draft) { d.Title = strings.Repeat("a", MaxTitleLen+1) }, []string{"title"}},
		{"author too long", func(d *Draft) { d.Author = strings.Repeat("a", MaxAuthorLen+1) }, []string{"author"}},
		{"description too long", func(d *Draft) { d.Description = strings.Repeat("a", MaxDescriptionLen+1) }, []string{"description"}},
		{"negative price", func(d *Draft) { d.Price = -1 }, []string{"price"}},
		{"unknown category", func(d *Draft) { d.Category = "Cookbooks" }, []string{"category"}},
		{"category is case sensitive", func(d *Draft) { d.Category = "fiction" }, []string{"category"}},
		{"negative stock", func(d *Draft) { d.Stock = -2 }, []string{"stock"}},
		{"several fields", func(d *Draft) { d.Title = ""; d.Author = ""; d.Category = "" }, []string{"title", "author", "category"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			_, err := NewBook(d, UserRef{ID: 1})
			assert.Equal(t, tc.fields, fieldsOf(t, err))
		})
	}
}

func TestNewBook_Boundaries(t *testing.T) {
	d := validDraft()
	d.Title = strings.Repeat("書", MaxTitleLen) // 按字符计数,不按字节
	d.Price = 0
	d.Stock = 0
	_, err := NewBook(d, UserRef{ID: 1})
	assert.NoError(t, err)
}

func TestApplyPatch(t *testing.T) {
	d := validDraft()
	d.Description = "desert planet"
	d.ISBN = "9780441013593"
	d.CoverImage = "/uploads/books/old.png"
	b, err := NewBook(d, UserRef{ID: 1})
	require.NoError(t, err)

	empty := ""
	zero := 0
	price := int64(2499)
	cover := "/uploads/books/new.png"

	old, err := b.ApplyPatch(Patch{
		Description: &empty,
		ISBN:        &empty,
		Stock:       &zero,
		Price:       &price,
		CoverImage:  &cover,
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/books/old.png", old)
	assert.Equal(t, "", b.Description)
	assert.Equal(t, "", b.ISBN)
	assert.Equal(t, 0, b.Stock)
	assert.Equal(t, int64(2499), b.Price)
	assert.Equal(t, cover, b.CoverImage)
	// 未出现在patch中的字段不变
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Science Fiction", b.Category)
}

func TestApplyPatch_EmptyRequiredField(t *testing.T) {
	b, err := NewBook(validDraft(), UserRef{ID: 1})
	require.NoError(t, err)

	empty := ""
	_, err = b.ApplyPatch(Patch{Title: &empty})
	assert.Equal(t, []string{"title"}, fieldsOf(t, err))
}

func TestApplyPatch_SameCoverNotReplaced(t *testing.T) {
	d := validDraft()
	d.CoverImage = "/uploads/books/a.png"
	b, err := NewBook(d, UserRef{ID: 1})
	require.NoError(t, err)

	same := "/uploads/books/a.png"
	old, err := b.ApplyPatch(Patch{CoverImage: &same})
	require.NoError(t, err)
	assert.Empty(t, old)
}

func TestAddReview_RecomputesMean(t *testing.T) {
	b, err := NewBook(validDraft(), UserRef{ID: 1})
	require.NoError(t, err)

	for i, rating := range []int{5, 4, 4} {
		_, err := b.AddReview(UserRef{ID: uint(10 + i)}, rating, "")
		require.NoError(t, err)
	}
	assert.InDelta(t, 13.0/3.0, b.Rating, 1e-9)
	assert.Len(t, b.Reviews, 3)
}

func TestAddReview_Rules(t *testing.T) {
	b, err := NewBook(validDraft(), UserRef{ID: 1})
	require.NoError(t, err)

	_, err = b.AddReview(UserRef{ID: 2}, 5, "great")
	require.NoError(t, err)

	_, err = b.AddReview(UserRef{ID: 2}, 1, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, 5.0, b.Rating)
	assert.Len(t, b.Reviews, 1)

	_, err = b.AddReview(UserRef{ID: 3}, 0, "")
	assert.Equal(t, []string{"rating"}, fieldsOf(t, err))
	_, err = b.AddReview(UserRef{ID: 3}, 6, "")
	assert.Equal(t, []string{"rating"}, fieldsOf(t, err))
	_, err = b.AddReview(UserRef{ID: 3}, 3, strings.Repeat("x", MaxCommentLen+1))
	assert.Equal(t, []string{"comment"}, fieldsOf(t, err))
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	owner := Requester{ID: 1, Role: RoleUser, Active: true}
	other := Requester{ID: 2, Role: RoleUser, Active: true}
	admin := Requester{ID: 3, Role: RoleAdmin, Active: true}

	assert.NoError(t, RequireOwnerOrAdmin(1, owner))
	assert.NoError(t, RequireOwnerOrAdmin(1, admin))
	assert.ErrorIs(t, RequireOwnerOrAdmin(1, other), ErrNotOwner)
	assert.ErrorIs(t, RequireOwnerOrAdmin(0, Requester{}), ErrNotOwner)
}

func TestListParams_Normalize(t *testing.T) {
	p := ListParams{Page: 0, PageSize: 500, SortBy: "isbn", SortOrder: "ASC", Search: "  dune "}.Normalize(DefaultPageSize, MaxPageSize)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, SortByCreatedAt, p.SortBy)
	assert.Equal(t, SortAsc, p.SortOrder)
	assert.Equal(t, "dune", p.Search)

	p = ListParams{Page: 3, SortBy: SortByPrice, SortOrder: "sideways"}.Normalize(DefaultPageSize, MaxPageSize)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, SortDesc, p.SortOrder)
	assert.Equal(t, 24, p.Offset())
}
