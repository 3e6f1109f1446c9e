package calendar

// Store 抽象了日程事件的存取接口。实现只负责存储与查询，不解析文本也不格式化输出。
type Store interface {
	// Add 以下一个自增 ID 创建事件并返回。at 为 nil 表示全天事件。
	Add(title string, date Date, at *Clock) Event
	// Query 返回 date 当天的事件，全天事件在前，其余按时间升序。
	Query(date Date) []Event
	// QueryUpcoming 返回 reference 当天及之后的事件，按 (日期, 时间) 升序。
	QueryUpcoming(reference Date) []Event
	// Delete 删除指定 ID 的事件，返回是否发生了删除。
	Delete(id int64) bool
}
