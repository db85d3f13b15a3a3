package types

// ListLoginLogsRequest 登录日志列表请求
type ListLoginLogsRequest struct {
	PageQuery
	Username string `json:"username" query:"username"`
	IP       string `json:"ip" query:"ip"`
	Status   *int8  `json:"status" query:"status"`
}

// ListOperationLogsRequest 操作日志列表请求
type ListOperationLogsRequest struct {
	PageQuery
	Path   string `json:"path" query:"path"`
	Method string `json:"method" query:"method"`
	Status *int8  `json:"status" query:"status"`
}
