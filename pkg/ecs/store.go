package ecs

// Store 保存某一类组件，按插入顺序迭代
//
// 迭代顺序是确定性的（实体加入存储的先后顺序），
// 目标选择等“先遇到者优先”的规则依赖这一点。
type Store[T any] struct {
	ids   []EntityID
	items []T
	index map[EntityID]int
}

// NewStore 创建组件存储并注册到 EntityManager，
// 实体被回收时其组件自动删除
func NewStore[T any](em *EntityManager) *Store[T] {
	s := &Store[T]{
		ids:   make([]EntityID, 0),
		items: make([]T, 0),
		index: make(map[EntityID]int),
	}
	if em != nil {
		em.register(s)
	}
	return s
}

// Add 为实体添加（或替换）组件
func (s *Store[T]) Add(id EntityID, component T) {
	if i, ok := s.index[id]; ok {
		s.items[i] = component
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.items = append(s.items, component)
}

// Get 获取实体的组件
func (s *Store[T]) Get(id EntityID) (T, bool) {
	if i, ok := s.index[id]; ok {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Has 检查实体是否拥有该组件
func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

// Remove 删除实体的组件，保持其余组件的相对顺序
// 需要移动后续元素，开销 O(n)；批量删除使用 removeIf
func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.index[id]; !ok {
		return
	}
	s.removeIf(func(other EntityID) bool { return other == id })
}

// removeIf 一次遍历删除所有满足条件的组件，保持其余组件的相对顺序
func (s *Store[T]) removeIf(pred func(EntityID) bool) {
	kept := 0
	for i, id := range s.ids {
		if pred(id) {
			delete(s.index, id)
			continue
		}
		if kept != i {
			s.ids[kept] = id
			s.items[kept] = s.items[i]
			s.index[id] = kept
		}
		kept++
	}
	var zero T
	for i := kept; i < len(s.items); i++ {
		s.items[i] = zero
	}
	s.ids = s.ids[:kept]
	s.items = s.items[:kept]
}

// Clear 删除所有组件
func (s *Store[T]) Clear() {
	s.ids = s.ids[:0]
	clear(s.items)
	s.items = s.items[:0]
	clear(s.index)
}

// Len 返回组件数量
func (s *Store[T]) Len() int {
	return len(s.ids)
}

// IDs 返回拥有该组件的实体列表（副本，可在遍历中安全增删）
func (s *Store[T]) IDs() []EntityID {
	result := make([]EntityID, len(s.ids))
	copy(result, s.ids)
	return result
}

// Each 按插入顺序遍历组件
// 回调返回 false 时停止遍历；遍历期间不要增删本存储的组件
func (s *Store[T]) Each(fn func(id EntityID, component T) bool) {
	for i, id := range s.ids {
		if !fn(id, s.items[i]) {
			return
		}
	}
}
