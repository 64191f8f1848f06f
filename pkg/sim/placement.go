package sim

import (
	"math"

	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// PlacementValidator 判断世界坐标能否建造防御塔
// game.BuildGrid 是基于关卡网格的实现
type PlacementValidator interface {
	IsValidPlacement(pos types.Vec2) bool
}

// placementTracker 需要跟踪占用状态的放置规则额外实现的接口
// 建造成功后调用 OccupyAt，出售后调用 ReleaseAt
type placementTracker interface {
	OccupyAt(pos types.Vec2, tower ecs.EntityID) error
	ReleaseAt(pos types.Vec2)
}

// openField 关卡没有建造网格时使用：任意有限坐标都可建造
type openField struct{}

func (openField) IsValidPlacement(pos types.Vec2) bool {
	return !math.IsNaN(pos.X) && !math.IsNaN(pos.Y) && !math.IsInf(pos.X, 0) && !math.IsInf(pos.Y, 0)
}
