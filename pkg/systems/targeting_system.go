package systems

import (
	"log"
	"math"

	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
	"github.com/decker502/tdsim/pkg/utils"
)

// TargetingSystem 防御塔索敌
//
// 两种时机重新索敌：
//  1. 周期性：每隔 retargetInterval 秒（与攻速无关）
//  2. 持有的目标失效（死亡、移除、失活或离开射程）时立即重新索敌
//
// 索敌规则：在射程内（距离 <= range）选择距离最近的敌人；
// 按生成顺序扫描并使用严格小于比较，距离相同时先生成的敌人优先。
type TargetingSystem struct {
	world            *entities.World
	retargetInterval float64
	verbose          bool
}

// NewTargetingSystem 创建索敌系统
func NewTargetingSystem(w *entities.World, retargetInterval float64) *TargetingSystem {
	return &TargetingSystem{
		world:            w,
		retargetInterval: retargetInterval,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *TargetingSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 为所有防御塔校验或重新选择目标
func (s *TargetingSystem) Update(deltaTime float64) {
	for _, id := range s.world.Towers.IDs() {
		tc, ok := s.world.Targets.Get(id)
		if !ok {
			continue
		}
		tc.RetargetTimer -= deltaTime

		if tc.HasTarget() && !s.IsValidTarget(id, tc.Target) {
			tc.Target = ecs.InvalidEntity
			s.Acquire(id)
			continue
		}
		if tc.RetargetTimer <= utils.FloatEpsilon {
			s.Acquire(id)
		}
	}
}

// IsValidTarget 敌人是否仍是防御塔的合法目标
func (s *TargetingSystem) IsValidTarget(towerID, enemyID ecs.EntityID) bool {
	if !s.world.IsLiveEnemy(enemyID) {
		return false
	}
	tower, ok := s.world.Towers.Get(towerID)
	if !ok {
		return false
	}
	towerPos, ok := s.world.Positions.Get(towerID)
	if !ok {
		return false
	}
	enemyPos, ok := s.world.Positions.Get(enemyID)
	if !ok {
		return false
	}
	return towerPos.Pos.DistanceTo(enemyPos.Pos) <= tower.Range
}

// Acquire 为防御塔重新选择目标并重置周期计时
// 返回新目标，射程内没有敌人时返回 ecs.InvalidEntity
func (s *TargetingSystem) Acquire(towerID ecs.EntityID) ecs.EntityID {
	tc, ok := s.world.Targets.Get(towerID)
	if !ok {
		return ecs.InvalidEntity
	}
	tower, ok := s.world.Towers.Get(towerID)
	if !ok {
		return ecs.InvalidEntity
	}
	towerPos, ok := s.world.Positions.Get(towerID)
	if !ok {
		return ecs.InvalidEntity
	}

	previous := tc.Target
	tc.Target = FindNearestEnemy(s.world, towerPos.Pos, tower.Range)
	tc.RetargetTimer = s.retargetInterval

	if s.verbose && tc.Target != previous {
		log.Printf("[TargetingSystem] Tower %d target %d -> %d", towerID, previous, tc.Target)
	}
	return tc.Target
}

// FindNearestEnemy 返回 origin 周围 radius 内距离最近的敌人
// 距离相差不超过 utils.FloatEpsilon 视为相同，此时 SpawnSeq 较小（先生成）者优先；
// 没有时返回 ecs.InvalidEntity
func FindNearestEnemy(w *entities.World, origin types.Vec2, radius float64) ecs.EntityID {
	best := ecs.InvalidEntity
	bestDist := math.Inf(1)
	var bestSeq uint64
	for _, id := range w.LiveEnemies() {
		pos, ok := w.Positions.Get(id)
		if !ok {
			continue
		}
		enemy, ok := w.Enemies.Get(id)
		if !ok {
			continue
		}
		d := origin.DistanceTo(pos.Pos)
		if d > radius {
			continue
		}
		closer := d < bestDist-utils.FloatEpsilon
		tie := !closer && d <= bestDist+utils.FloatEpsilon && enemy.SpawnSeq < bestSeq
		if best == ecs.InvalidEntity || closer || tie {
			best = id
			bestDist = d
			bestSeq = enemy.SpawnSeq
		}
	}
	return best
}
