package components

import "github.com/decker502/tdsim/pkg/types"

// PositionComponent 实体在世界坐标系中的位置
type PositionComponent struct {
	Pos types.Vec2
}
