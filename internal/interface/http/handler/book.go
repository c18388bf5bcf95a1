package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// coverField multipart中封面文件的字段名
const coverField = "coverImage"

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBook    *appbook.AddBookUseCase
	getBook    *appbook.GetBookUseCase
	listBooks  *appbook.ListBooksUseCase
	updateBook *appbook.UpdateBookUseCase
	deleteBook *appbook.DeleteBookUseCase
	addReview  *appbook.AddReviewUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBook *appbook.AddBookUseCase,
	getBook *appbook.GetBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	addReview *appbook.AddReviewUseCase,
) *BookHandler {
	return &BookHandler{
		addBook:    addBook,
		getBook:    getBook,
		listBooks:  listBooks,
		updateBook: updateBook,
		deleteBook: deleteBook,
		addReview:  addReview,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询上架图书,支持关键字搜索、分类过滤和排序
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码,默认1"
// @Param        limit     query int    false "每页数量,默认12"
// @Param        search    query string false "标题/作者/描述关键字"
// @Param        category  query string false "分类"
// @Param        sortBy    query string false "排序字段" Enums(createdAt, updatedAt, title, author, price, rating, stock)
// @Param        sortOrder query string false "排序方向" Enums(asc, desc)
// @Success      200 {object} appbook.ListBooksResponse
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), q.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  查询上架图书详情,包含评论
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} dto.BookBody
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BookBody{Book: *view})
}

// AddBook 发布图书
// @Summary      发布图书
// @Description  登录用户发布图书,可以同时上传封面(jpeg/jpg/png/gif,最大10MB)
// @Tags         图书
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request    body     dto.CreateBookRequest true  "图书信息"
// @Param        coverImage formData file                  false "封面图片"
// @Success      201 {object} dto.BookMessageBody
// @Failure      400 {object} response.ErrorBody "参数错误/ISBN已存在"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Router       /api/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}

	// 1. 参数绑定
	var req dto.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		response.Error(c, err)
		return
	}

	// 2. 可选封面
	cover, closeCover, err := formCover(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	// 3. 调用用例
	view, err := h.addBook.Execute(c.Request.Context(), appbook.AddBookRequest{
		Draft:     draft,
		Cover:     cover,
		Requester: r,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.BookMessageBody{Message: "Book added successfully", Book: *view})
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  发布者本人或管理员修改图书,只修改出现的字段;上传新封面会替换旧封面
// @Tags         图书
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id         path     int                   true  "图书ID"
// @Param        request    body     dto.UpdateBookRequest true  "要修改的字段"
// @Param        coverImage formData file                  false "新封面图片"
// @Success      200 {object} dto.BookMessageBody
// @Failure      400 {object} response.ErrorBody "参数错误/ISBN已存在"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      403 {object} response.ErrorBody "无权限"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /api/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		response.Error(c, err)
		return
	}

	cover, closeCover, err := formCover(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	view, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:        id,
		Patch:     patch,
		Cover:     cover,
		Requester: r,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BookMessageBody{Message: "Book updated successfully", Book: *view})
}

// DeleteBook 下架图书
// @Summary      下架图书
// @Description  发布者本人或管理员下架图书(软删除),下架后不再出现在列表和详情中
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.MessageBody
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      403 {object} response.ErrorBody "无权限"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteBook.Execute(c.Request.Context(), id, r); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Book deleted successfully")
}

// AddReview 添加评论
// @Summary      添加评论
// @Description  每个用户对同一本书只能评论一次,评分为所有评论的平均值
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "图书ID"
// @Param        request body dto.ReviewRequest true "评分(1-5)和评论"
// @Success      200 {object} dto.BookMessageBody
// @Failure      400 {object} response.ErrorBody "参数错误/重复评论"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /api/books/{id}/reviews [post]
func (h *BookHandler) AddReview(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	id, err := bookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	view, err := h.addReview.Execute(c.Request.Context(), appbook.AddReviewRequest{
		BookID:    id,
		Rating:    *req.Rating,
		Comment:   req.Comment,
		Requester: r,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BookMessageBody{Message: "Review added successfully", Book: *view})
}

// Categories 可选分类
// @Summary      分类列表
// @Description  发布/编辑图书时可选的分类
// @Tags         图书
// @Produce      json
// @Success      200 {object} dto.CategoriesBody
// @Router       /api/categories [get]
func (h *BookHandler) Categories(c *gin.Context) {
	response.OK(c, dto.CategoriesBody{Categories: appbook.Categories()})
}

// bookID 解析路径中的图书ID,非数字ID视为不存在
func bookID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, book.ErrBookNotFound
	}
	return uint(id), nil
}

// requester 认证中间件注入的当前用户,缺失时直接写出401
func requester(c *gin.Context) (book.Requester, bool) {
	r, ok := middleware.CurrentRequester(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
	}
	return r, ok
}

// formCover 读取multipart中的封面文件,非multipart请求或没有上传时返回nil
// 返回的close必须在用例执行完后调用
func formCover(c *gin.Context) (*book.CoverUpload, func(), error) {
	noop := func() {}
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}

	fh, err := c.FormFile(coverField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, dto.BindError(err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperrors.Wrap(err, "failed to read cover image")
	}
	return &book.CoverUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
