package entities

import (
	"fmt"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// NewProjectileEntity 创建追踪弹道实体
// 弹道携带发射瞬间的塔属性快照，之后塔被升级或出售都不影响已发射的弹道
//
// 参数:
//   - w: 实体注册表
//   - towerID: 发射的防御塔
//   - tower: 防御塔属性
//   - from: 发射位置
//   - target: 追踪的敌人
//   - maxLifetime: 最长存活时间（秒）
func NewProjectileEntity(w *World, towerID ecs.EntityID, tower *components.TowerComponent, from types.Vec2, target ecs.EntityID, maxLifetime float64) (ecs.EntityID, error) {
	if w == nil {
		return 0, fmt.Errorf("world cannot be nil")
	}
	if tower == nil {
		return 0, fmt.Errorf("tower cannot be nil")
	}
	if tower.ProjectileSpeed <= 0 {
		return 0, fmt.Errorf("tower %d fires instant attacks, not projectiles", towerID)
	}

	entityID := w.EM.CreateEntity()

	w.Positions.Add(entityID, &components.PositionComponent{Pos: from})
	w.Projectiles.Add(entityID, &components.ProjectileComponent{
		SourceTower:    towerID,
		Target:         target,
		Damage:         tower.Damage,
		DamageType:     tower.DamageType,
		SplashRadius:   tower.SplashRadius,
		SlowPercentage: tower.SlowPercentage,
		SlowDuration:   tower.SlowDuration,
		Speed:          tower.ProjectileSpeed,
		MaxLifetime:    maxLifetime,
	})

	return entityID, nil
}
