package book

// Categories 支持的图书分类(表单下拉使用)
var Categories = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Romance",
	"Thriller",
	"Biography",
	"History",
	"Science",
	"Technology",
	"Business",
	"Self-Help",
	"Health",
	"Travel",
	"Cooking",
	"Art",
	"Music",
	"Sports",
	"Children",
	"Young Adult",
	"Education",
	"Religion",
	"Philosophy",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValidCategory 分类区分大小写,必须与Categories完全一致
func IsValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}
