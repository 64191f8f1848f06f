package game

import (
	"fmt"
	"math"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
	"github.com/decker502/tdsim/pkg/utils"
)

// BuildGrid 建造网格
// 负责判断世界坐标能否建造防御塔，并跟踪每个格子被哪座塔占用
//
// 不可建造的格子：
//   - 格子中心到敌人路径的距离小于 pathClearance
//   - 关卡配置中显式列出的 blocked 格子
//
// 网格规格由关卡的 grid 配置决定，占用表按 [row][col] 存储塔的实体ID，0 表示空格子
type BuildGrid struct {
	origin   types.Vec2
	cellSize float64
	cols     int
	rows     int

	blocked   [][]bool
	occupancy [][]ecs.EntityID
}

// NewBuildGrid 根据网格配置和敌人路径创建建造网格
//
// 参数:
//   - cfg: 网格配置（必须已经过 applyDefaults 和校验）
//   - path: 敌人路径点，压在路径上的格子自动标记为不可建造
//
// 返回:
//   - *BuildGrid: 建造网格
//   - error: cfg 为 nil 或尺寸无效时返回错误
func NewBuildGrid(cfg *config.GridConfig, path []types.Vec2) (*BuildGrid, error) {
	if cfg == nil {
		return nil, fmt.Errorf("grid config cannot be nil")
	}
	if cfg.CellSize <= 0 || cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("invalid grid size: %dx%d cells of %v", cfg.Cols, cfg.Rows, cfg.CellSize)
	}

	g := &BuildGrid{
		origin:    cfg.Origin,
		cellSize:  cfg.CellSize,
		cols:      cfg.Cols,
		rows:      cfg.Rows,
		blocked:   make([][]bool, cfg.Rows),
		occupancy: make([][]ecs.EntityID, cfg.Rows),
	}
	for row := 0; row < cfg.Rows; row++ {
		g.blocked[row] = make([]bool, cfg.Cols)
		g.occupancy[row] = make([]ecs.EntityID, cfg.Cols)
	}

	for _, c := range cfg.Blocked {
		if g.inBounds(c.Col, c.Row) {
			g.blocked[c.Row][c.Col] = true
		}
	}

	// 路径占用的格子
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			center := g.TileCenter(utils.TileCoord{Col: col, Row: row})
			if distanceToPath(center, path) < cfg.PathClearance {
				g.blocked[row][col] = true
			}
		}
	}

	return g, nil
}

// distanceToPath 点到折线路径的最短距离，路径为空时返回 +Inf
func distanceToPath(p types.Vec2, path []types.Vec2) float64 {
	switch len(path) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.DistanceTo(path[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(path); i++ {
		if d := utils.DistancePointToSegment(p, path[i-1], path[i]); d < best {
			best = d
		}
	}
	return best
}

func (g *BuildGrid) inBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// TileAt 返回世界坐标所在的格子
func (g *BuildGrid) TileAt(pos types.Vec2) (utils.TileCoord, bool) {
	return utils.WorldToTile(pos, g.origin, g.cellSize, g.cols, g.rows)
}

// TileCenter 返回格子中心的世界坐标
func (g *BuildGrid) TileCenter(coord utils.TileCoord) types.Vec2 {
	return utils.TileCenter(coord, g.origin, g.cellSize)
}

// IsBlocked 格子是否不可建造（越界视为不可建造）
func (g *BuildGrid) IsBlocked(coord utils.TileCoord) bool {
	if !g.inBounds(coord.Col, coord.Row) {
		return true
	}
	return g.blocked[coord.Row][coord.Col]
}

// IsOccupied 格子是否已被防御塔占用（越界视为已占用）
func (g *BuildGrid) IsOccupied(coord utils.TileCoord) bool {
	if !g.inBounds(coord.Col, coord.Row) {
		return true
	}
	return g.occupancy[coord.Row][coord.Col] != 0
}

// IsValidPlacement 判断能否在世界坐标 pos 处建造防御塔
func (g *BuildGrid) IsValidPlacement(pos types.Vec2) bool {
	coord, ok := g.TileAt(pos)
	if !ok {
		return false
	}
	return !g.IsBlocked(coord) && !g.IsOccupied(coord)
}

// OccupyAt 标记 pos 所在格子被防御塔占用
func (g *BuildGrid) OccupyAt(pos types.Vec2, tower ecs.EntityID) error {
	coord, ok := g.TileAt(pos)
	if !ok {
		return fmt.Errorf("position (%.2f, %.2f) is outside the build grid", pos.X, pos.Y)
	}
	if g.IsBlocked(coord) {
		return fmt.Errorf("grid cell (%d, %d) is not buildable", coord.Col, coord.Row)
	}
	if occupant := g.occupancy[coord.Row][coord.Col]; occupant != 0 {
		return fmt.Errorf("grid cell (%d, %d) is already occupied by entity %d", coord.Col, coord.Row, occupant)
	}
	g.occupancy[coord.Row][coord.Col] = tower
	return nil
}

// ReleaseAt 清空 pos 所在格子的占用状态，越界时不做任何事
func (g *BuildGrid) ReleaseAt(pos types.Vec2) {
	coord, ok := g.TileAt(pos)
	if !ok {
		return
	}
	g.occupancy[coord.Row][coord.Col] = 0
}

// BuildableCount 返回当前可建造的格子数
func (g *BuildGrid) BuildableCount() int {
	n := 0
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if !g.blocked[row][col] && g.occupancy[row][col] == 0 {
				n++
			}
		}
	}
	return n
}

// Size 返回网格的列数和行数
func (g *BuildGrid) Size() (cols, rows int) {
	return g.cols, g.rows
}
