package systems

import (
	"log"

	"github.com/decker502/tdsim/pkg/entities"
)

// ProjectileSystem 推进飞行中的弹道
//
// 弹道追踪目标当前位置；本帧步长足以到达目标时命中并结算攻击（命中点为目标位置）。
// 目标失效或飞行时间超过上限时弹道直接销毁，不造成伤害。
type ProjectileSystem struct {
	world   *entities.World
	verbose bool
}

// NewProjectileSystem 创建弹道系统
func NewProjectileSystem(w *entities.World) *ProjectileSystem {
	return &ProjectileSystem{world: w}
}

// SetVerbose 设置是否输出详细日志
func (s *ProjectileSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 移动弹道并处理命中
func (s *ProjectileSystem) Update(deltaTime float64) {
	for _, id := range s.world.Projectiles.IDs() {
		if s.world.EM.IsMarkedForDestroy(id) {
			continue
		}
		p, _ := s.world.Projectiles.Get(id)
		pos, ok := s.world.Positions.Get(id)
		if !ok {
			continue
		}
		p.Age += deltaTime

		if !s.world.IsLiveEnemy(p.Target) {
			if s.verbose {
				log.Printf("[ProjectileSystem] Projectile %d lost target %d", id, p.Target)
			}
			s.world.EM.DestroyEntity(id)
			continue
		}

		targetPos, _ := s.world.Positions.Get(p.Target)
		step := p.Speed * deltaTime
		if pos.Pos.DistanceTo(targetPos.Pos) <= step {
			pos.Pos = targetPos.Pos
			hits := ResolveAttack(s.world, AttackFromProjectile(p), p.Target, targetPos.Pos)
			if s.verbose {
				log.Printf("[ProjectileSystem] Projectile %d impacted, %d enemies hit", id, len(hits))
			}
			s.world.EM.DestroyEntity(id)
			continue
		}

		pos.Pos = pos.Pos.MoveTowards(targetPos.Pos, step)
		if p.Age >= p.MaxLifetime {
			if s.verbose {
				log.Printf("[ProjectileSystem] Projectile %d expired after %.2fs", id, p.Age)
			}
			s.world.EM.DestroyEntity(id)
		}
	}
}
