package types

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"pageSize" query:"pageSize"`
}

// Normalize 填充分页默认值
func (q *PageQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// Offset 计算分页偏移
func (q *PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// IDRequest 仅含ID的请求
type IDRequest struct {
	ID uint `json:"id" validate:"required"`
}
