package calendar

import (
	"slices"
	"sync"
)

// MemoryStore 以内存方式保存事件，进程退出即丢失。
// ID 由计数器分配，删除后不会复用；查询时才排序。
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int64]Event
	nextID int64
}

// NewMemoryStore 创建空的 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[int64]Event), nextID: 1}
}

// Add 实现 Store 接口。
func (m *MemoryStore) Add(title string, date Date, at *Clock) Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	event := cloneEvent(Event{ID: m.nextID, Title: title, Date: date, Time: at})
	m.nextID++
	m.events[event.ID] = event
	return cloneEvent(event)
}

// Query 实现 Store 接口。
func (m *MemoryStore) Query(date Date) []Event {
	return m.collect(func(e Event) bool { return e.Date == date })
}

// QueryUpcoming 实现 Store 接口。
func (m *MemoryStore) QueryUpcoming(reference Date) []Event {
	return m.collect(func(e Event) bool { return !e.Date.Before(reference) })
}

// Delete 实现 Store 接口。
func (m *MemoryStore) Delete(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return false
	}
	delete(m.events, id)
	return true
}

// Stats 返回当前事件数量统计。
func (m *MemoryStore) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Total: len(m.events), Created: m.nextID - 1}
	for _, event := range m.events {
		if event.AllDay() {
			stats.AllDay++
		} else {
			stats.Timed++
		}
	}
	return stats
}

func (m *MemoryStore) collect(keep func(Event) bool) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Event, 0, len(m.events))
	for _, event := range m.events {
		if keep(event) {
			results = append(results, cloneEvent(event))
		}
	}
	slices.SortFunc(results, compareEvents)
	return results
}

// ensure interface compliance at compile time
var _ Store = (*MemoryStore)(nil)
