package calendar

// Stats 汇总存储中的事件数量，会话结束时写入日志。
type Stats struct {
	Total   int   `json:"total"`
	AllDay  int   `json:"all_day"`
	Timed   int   `json:"timed"`
	Created int64 `json:"created"`
}
