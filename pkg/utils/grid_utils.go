package utils

import (
	"math"

	"github.com/decker502/tdsim/pkg/types"
)

// TileCoord 建造网格中的格子坐标
type TileCoord struct {
	Col int
	Row int
}

// WorldToTile 将世界坐标转换为建造网格坐标
// 参数:
//   - pos: 世界坐标
//   - origin: 网格左上角的世界坐标
//   - cellSize: 每格边长
//   - cols, rows: 网格列数、行数
//
// 返回:
//   - coord: 格子坐标
//   - isValid: 是否在网格范围内
func WorldToTile(pos, origin types.Vec2, cellSize float64, cols, rows int) (coord TileCoord, isValid bool) {
	if cellSize <= 0 {
		return TileCoord{}, false
	}

	col := int(math.Floor((pos.X - origin.X) / cellSize))
	row := int(math.Floor((pos.Y - origin.Y) / cellSize))

	if col < 0 || col >= cols || row < 0 || row >= rows {
		return TileCoord{}, false
	}
	return TileCoord{Col: col, Row: row}, true
}

// TileCenter 返回格子中心的世界坐标
func TileCenter(coord TileCoord, origin types.Vec2, cellSize float64) types.Vec2 {
	return types.Vec2{
		X: origin.X + float64(coord.Col)*cellSize + cellSize/2,
		Y: origin.Y + float64(coord.Row)*cellSize + cellSize/2,
	}
}

// DistancePointToSegment 点到线段的最短距离
// 用于判断建造格子是否压在敌人路径上
func DistancePointToSegment(p, a, b types.Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := Clamp01(((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq)
	closest := a.Add(ab.Scale(t))
	return p.DistanceTo(closest)
}
