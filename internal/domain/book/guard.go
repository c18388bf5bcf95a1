package book

// 角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Requester 发起请求的已认证用户
// 由认证中间件根据Token和数据库中的用户构造
type Requester struct {
	ID       uint
	Username string
	Role     string
	Active   bool
}

// IsAdmin 是否为管理员
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// Ref 转为用户投影
func (r Requester) Ref() UserRef {
	return UserRef{ID: r.ID, Username: r.Username}
}

// RequireOwnerOrAdmin 所有修改图书的操作共用的权限检查
// 发布者本人或管理员放行,其余返回Forbidden
func RequireOwnerOrAdmin(ownerID uint, r Requester) error {
	if r.ID != 0 && r.ID == ownerID {
		return nil
	}
	if r.IsAdmin() {
		return nil
	}
	return ErrNotOwner
}
