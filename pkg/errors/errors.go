package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，百位前缀对应HTTP状态码（见HTTPStatus）
// 2. Message是用户友好的提示信息
// 3. Details携带字段级校验错误，仅用于参数错误
// 4. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// FieldError 字段校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，预定义错误被WithDetails复制后仍能匹配
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、文件系统错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Validation 创建参数校验错误
func Validation(details ...FieldError) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: "Validation failed",
		Details: details,
	}
}

// InvalidField 单字段校验错误的快捷方式
func InvalidField(field, message string) *AppError {
	return Validation(FieldError{Field: field, Message: message})
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 业务规则校验失败
// - 401xx: 认证失败
// - 403xx: 无权限
// - 404xx: 资源不存在
// - 409xx: 参数错误（对外仍返回400）
// - 429xx/503xx/504xx: 限流、并发已满、超时
// - 5xxxx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeStorageError  = 50003 // 文件存储错误

	// 流量控制（429xx、503xx、504xx）
	ErrCodeTooManyRequests = 42900 // 请求过于频繁
	ErrCodeServerBusy      = 50300 // 并发已满
	ErrCodeTimeout         = 50400 // 处理超时

	// 认证错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 邮箱或密码错误
	ErrCodeAccountInactive = 40105 // 账号已停用

	// 授权错误（40300-40399）
	ErrCodeForbidden     = 40300 // 无权限
	ErrCodeAdminRequired = 40301 // 需要管理员权限

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound = 40401 // 用户不存在
	ErrCodeBookNotFound = 40402 // 图书不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError     = 40000 // 业务错误(通用)
	ErrCodeEmailDuplicate    = 40003 // 邮箱已存在
	ErrCodeISBNDuplicate     = 40004 // ISBN已存在
	ErrCodeWeakPassword      = 40005 // 密码强度不足
	ErrCodeAlreadyReviewed   = 40006 // 重复评论
	ErrCodeUsernameDuplicate = 40007 // 用户名已存在
	ErrCodeSelfDeactivation  = 40008 // 不能停用自己
	ErrCodeDuplicateEntry    = 40009 // 重复记录(通用)

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "Server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "Database error")
	ErrRedisError    = New(ErrCodeRedisError, "Cache service error")

	// 流量控制
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests")
	ErrServerBusy      = New(ErrCodeServerBusy, "Server busy, please retry")
	ErrTimeout         = New(ErrCodeTimeout, "Request timed out")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "No token, authorization denied")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "Token is not valid")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token has expired")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "Invalid credentials")
	ErrAccountInactive = New(ErrCodeAccountInactive, "Account is deactivated")
	ErrForbidden       = New(ErrCodeForbidden, "Access denied")
	ErrAdminRequired   = New(ErrCodeAdminRequired, "Admin access required")

	// 资源不存在
	ErrNotFound     = New(ErrCodeNotFound, "Resource not found")
	ErrUserNotFound = New(ErrCodeUserNotFound, "User not found")
	ErrBookNotFound = New(ErrCodeBookNotFound, "Book not found")

	// 业务规则
	ErrEmailDuplicate    = New(ErrCodeEmailDuplicate, "Email already registered")
	ErrUsernameDuplicate = New(ErrCodeUsernameDuplicate, "Username already taken")
	ErrISBNDuplicate     = New(ErrCodeISBNDuplicate, "Book with this ISBN already exists")
	ErrWeakPassword      = New(ErrCodeWeakPassword, "Password must be at least 6 characters")
	ErrAlreadyReviewed   = New(ErrCodeAlreadyReviewed, "You have already reviewed this book")
	ErrSelfDeactivation  = New(ErrCodeSelfDeactivation, "You cannot delete your own account")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "Validation failed")
	ErrBindError     = New(ErrCodeBindError, "Malformed request")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrInternal.Message)
}

// HTTPStatus 业务错误码 → HTTP状态码
// 参数错误(409xx)对外统一为400
func HTTPStatus(code int) int {
	switch code / 100 {
	case 400, 409:
		return http.StatusBadRequest
	case 401:
		return http.StatusUnauthorized
	case 403:
		return http.StatusForbidden
	case 404:
		return http.StatusNotFound
	case 429:
		return http.StatusTooManyRequests
	case 503:
		return http.StatusServiceUnavailable
	case 504:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
