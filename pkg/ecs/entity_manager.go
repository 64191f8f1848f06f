package ecs

// EntityID 是实体的稳定句柄
//
// 低 32 位为槽位索引，高 32 位为槽位代数（generation）。
// 槽位被回收复用时代数递增，因此已销毁实体的旧句柄永远不会解析到新实体。
// 0 保留为无效 ID。
type EntityID uint64

// InvalidEntity 无效实体句柄
const InvalidEntity EntityID = 0

func makeEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index 返回句柄的槽位索引
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation 返回句柄的代数
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}

type entitySlot struct {
	generation uint32
	alive      bool
	marked     bool // 已标记删除，等待 RemoveMarkedEntities
}

// EntityManager 管理实体句柄的分配与回收
//
// 设计说明：
//   - 实体存放在固定槽位数组（arena）中，回收的槽位进入空闲列表复用
//   - DestroyEntity 只做标记，RemoveMarkedEntities 统一回收，
//     保证一帧内的在途事件引用到的句柄在帧结束前仍然有效
//   - 组件数据由各个 Store[T] 保存，EntityManager 只负责生命周期
type EntityManager struct {
	// 槽位 0 保留不用，使 EntityID 0 永远无效
	slots []entitySlot
	// 可复用的槽位索引（后进先出）
	freeList []uint32
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
	// 回收实体时通知的组件存储
	stores []componentRemover
	alive  int
}

// componentRemover 由 Store[T] 实现，回收实体时清除其组件
type componentRemover interface {
	removeIf(pred func(EntityID) bool)
	Clear()
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		slots:             make([]entitySlot, 1, 64),
		freeList:          make([]uint32, 0),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 分配一个新实体并返回其句柄
// 优先复用空闲槽位；复用时代数已在回收时递增
func (em *EntityManager) CreateEntity() EntityID {
	var index uint32
	if n := len(em.freeList); n > 0 {
		index = em.freeList[n-1]
		em.freeList = em.freeList[:n-1]
	} else {
		em.slots = append(em.slots, entitySlot{generation: 1})
		index = uint32(len(em.slots) - 1)
	}

	slot := &em.slots[index]
	slot.alive = true
	em.alive++
	return makeEntityID(index, slot.generation)
}

// IsAlive 检查句柄是否指向一个存活的实体
// 已标记删除但尚未回收的实体仍视为存活
func (em *EntityManager) IsAlive(id EntityID) bool {
	index := id.Index()
	if id == InvalidEntity || int(index) >= len(em.slots) {
		return false
	}
	slot := em.slots[index]
	return slot.alive && slot.generation == id.Generation()
}

// DestroyEntity 标记实体待删除(不立即删除)
func (em *EntityManager) DestroyEntity(id EntityID) {
	if !em.IsAlive(id) {
		return
	}
	slot := &em.slots[id.Index()]
	if slot.marked {
		return
	}
	slot.marked = true
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// IsMarkedForDestroy 检查实体是否已被标记删除
func (em *EntityManager) IsMarkedForDestroy(id EntityID) bool {
	return em.IsAlive(id) && em.slots[id.Index()].marked
}

// RemoveMarkedEntities 回收所有标记删除的实体
// 槽位代数递增后进入空闲列表，所有注册的组件存储同步删除该实体的组件
func (em *EntityManager) RemoveMarkedEntities() {
	if len(em.entitiesToDestroy) == 0 {
		return
	}
	// 每个存储只压缩一次，一帧删除多个实体（如溅射清场）时仍是线性开销
	for _, store := range em.stores {
		store.removeIf(em.IsMarkedForDestroy)
	}
	for _, id := range em.entitiesToDestroy {
		if !em.IsAlive(id) {
			continue
		}
		slot := &em.slots[id.Index()]
		slot.alive = false
		slot.marked = false
		slot.generation++
		if slot.generation == 0 {
			slot.generation = 1
		}
		em.freeList = append(em.freeList, id.Index())
		em.alive--
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
}

// Clear 立即回收所有实体（用于停止并清场）
func (em *EntityManager) Clear() {
	for index := 1; index < len(em.slots); index++ {
		slot := &em.slots[index]
		if !slot.alive {
			continue
		}
		slot.alive = false
		slot.marked = false
		slot.generation++
		if slot.generation == 0 {
			slot.generation = 1
		}
		em.freeList = append(em.freeList, uint32(index))
	}
	for _, store := range em.stores {
		store.Clear()
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
	em.alive = 0
}

// Count 返回存活实体数量
func (em *EntityManager) Count() int {
	return em.alive
}

func (em *EntityManager) register(store componentRemover) {
	em.stores = append(em.stores, store)
}
