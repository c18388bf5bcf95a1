package sqlstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/sqlstore/sqlstoretest"
)

func newBook(t *testing.T, owner book.UserRef, title, category, isbn string) *book.Book {
	t.Helper()
	b, err := book.NewBook(book.Draft{
		Title:    title,
		Author:   "Author " + title,
		Price:    1999,
		Category: category,
		ISBN:     isbn,
		Stock:    3,
	}, owner)
	require.NoError(t, err)
	return b
}

func TestBookRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	repo := sqlstore.NewBookRepository(db)

	b := newBook(t, book.UserRef{ID: owner.ID, Username: owner.Username}, "Dune", "Science Fiction", "")
	require.NoError(t, repo.Create(ctx, b))
	require.NotZero(t, b.ID)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, int64(1999), got.Price)
	assert.Equal(t, "", got.ISBN)
	assert.Equal(t, owner.ID, got.AddedBy.ID)
	assert.Equal(t, "alice", got.AddedBy.Username)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.Reviews)

	_, err = repo.FindByID(ctx, b.ID+100)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_ISBNUniqueness(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	ref := book.UserRef{ID: owner.ID}
	repo := sqlstore.NewBookRepository(db)

	// 没有ISBN的图书可以有多本
	require.NoError(t, repo.Create(ctx, newBook(t, ref, "A", "Fiction", "")))
	require.NoError(t, repo.Create(ctx, newBook(t, ref, "B", "Fiction", "")))

	first := newBook(t, ref, "C", "Fiction", "978-0441013593")
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newBook(t, ref, "D", "Fiction", "978-0441013593"))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)

	// 已下架的图书仍然占用ISBN
	locked, err := repo.LockByID(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, locked))

	exists, err := repo.ExistsByISBN(ctx, "978-0441013593", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByISBN(ctx, "978-0441013593", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBookRepository_DeactivateHidesBook(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	ref := book.UserRef{ID: owner.ID}
	repo := sqlstore.NewBookRepository(db)

	kept := newBook(t, ref, "Kept", "History", "")
	gone := newBook(t, ref, "Gone", "Travel", "")
	require.NoError(t, repo.Create(ctx, kept))
	require.NoError(t, repo.Create(ctx, gone))

	locked, err := repo.LockByID(ctx, gone.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, locked))

	_, err = repo.FindByID(ctx, gone.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	_, err = repo.LockByID(ctx, gone.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	items, total, err := repo.List(ctx, book.ListParams{}.Normalize(12, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ID)

	categories, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"History"}, categories)

	// 数据仍然保留
	var count int64
	require.NoError(t, db.Model(&sqlstore.BookModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestBookRepository_UpdateVersionConflict(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	repo := sqlstore.NewBookRepository(db)

	b := newBook(t, book.UserRef{ID: owner.ID}, "Dune", "Science Fiction", "")
	require.NoError(t, repo.Create(ctx, b))

	fresh, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)

	fresh.Title = "Dune Messiah"
	require.NoError(t, repo.Update(ctx, fresh))
	assert.Equal(t, int64(1), fresh.Version)

	stale.Title = "Children of Dune"
	assert.ErrorIs(t, repo.Update(ctx, stale), book.ErrVersionConflict)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
}

func TestBookRepository_AppendReview(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	reader := sqlstoretest.CreateUser(t, db, "bob", "user")
	repo := sqlstore.NewBookRepository(db)
	tx := sqlstore.NewTxManager(db)

	b := newBook(t, book.UserRef{ID: owner.ID}, "Dune", "Science Fiction", "")
	require.NoError(t, repo.Create(ctx, b))

	err := tx.Transaction(ctx, func(ctx context.Context) error {
		locked, err := repo.LockByID(ctx, b.ID)
		if err != nil {
			return err
		}
		review, err := locked.AddReview(book.UserRef{ID: reader.ID}, 4, "good")
		if err != nil {
			return err
		}
		return repo.AppendReview(ctx, locked, review)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "bob", got.Reviews[0].User.Username)
	assert.Equal(t, "good", got.Reviews[0].Comment)

	// 绕过实体检查直接插入重复评论,唯一索引兜底
	stale := *got
	stale.Reviews = nil
	err = tx.Transaction(ctx, func(ctx context.Context) error {
		review, err := stale.AddReview(book.UserRef{ID: reader.ID}, 1, "again")
		if err != nil {
			return err
		}
		return repo.AppendReview(ctx, &stale, review)
	})
	assert.ErrorIs(t, err, book.ErrAlreadyReviewed)

	got, err = repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Reviews, 1)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
}

func TestBookRepository_ListFilterSortPage(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	owner := sqlstoretest.CreateUser(t, db, "alice", "user")
	ref := book.UserRef{ID: owner.ID}
	repo := sqlstore.NewBookRepository(db)

	for i := 1; i <= 30; i++ {
		category := "Fiction"
		if i%3 == 0 {
			category = "History"
		}
		b := newBook(t, ref, fmt.Sprintf("Book %02d", i), category, "")
		b.Price = int64(i * 100)
		require.NoError(t, repo.Create(ctx, b))
	}
	special := newBook(t, ref, "100% Pure_Logic", "Science", "")
	require.NoError(t, repo.Create(ctx, special))

	t.Run("分页", func(t *testing.T) {
		p := book.ListParams{Page: 3, PageSize: 12, Category: "Fiction", SortBy: "price", SortOrder: "asc"}.Normalize(12, 100)
		items, total, err := repo.List(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Empty(t, items)

		p.Page = 2
		items, _, err = repo.List(ctx, p)
		require.NoError(t, err)
		assert.Len(t, items, 8)
	})

	t.Run("排序", func(t *testing.T) {
		p := book.ListParams{SortBy: "price", SortOrder: "desc", PageSize: 3}.Normalize(12, 100)
		items, _, err := repo.List(ctx, p)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Book 30", items[0].Title)
		assert.Equal(t, "Book 29", items[1].Title)
	})

	t.Run("搜索不区分大小写且转义通配符", func(t *testing.T) {
		items, total, err := repo.List(ctx, book.ListParams{Search: "BOOK 1"}.Normalize(12, 100))
		require.NoError(t, err)
		assert.Equal(t, int64(10), total) // Book 10-19
		assert.Len(t, items, 10)

		items, total, err = repo.List(ctx, book.ListParams{Search: "100%"}.Normalize(12, 100))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, special.ID, items[0].ID)

		_, total, err = repo.List(ctx, book.ListParams{Search: "_"}.Normalize(12, 100))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("分类去重排序", func(t *testing.T) {
		categories, err := repo.DistinctCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Fiction", "History", "Science"}, categories)
	})
}
