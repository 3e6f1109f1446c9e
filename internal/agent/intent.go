package agent

// Intent 表示一行命令被归类后的意图。
type Intent int

const (
	IntentUnrecognized Intent = iota
	IntentAdd
	IntentViewByDate
	IntentViewUpcoming
	IntentDelete
	IntentHelp
)

func (i Intent) String() string {
	switch i {
	case IntentAdd:
		return "add"
	case IntentViewByDate:
		return "view_by_date"
	case IntentViewUpcoming:
		return "view_upcoming"
	case IntentDelete:
		return "delete"
	case IntentHelp:
		return "help"
	default:
		return "unrecognized"
	}
}

// Mutates 报告该意图是否会修改日程。
func (i Intent) Mutates() bool {
	return i == IntentAdd || i == IntentDelete
}
