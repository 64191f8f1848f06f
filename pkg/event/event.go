// Package event 提供模拟核心向外部（渲染、存档、统计）发送通知的机制
//
// 模拟过程中产生的事件先进入队列，由驱动器在每次 Tick 结束时按发布顺序统一分发，
// 因此订阅者看到的始终是一帧完整结算后的状态。
package event

import (
	"fmt"

	"github.com/decker502/tdsim/pkg/ecs"
)

// EventType 事件类型
type EventType string

const (
	EnemySpawned      EventType = "EnemySpawned"      // 敌人生成
	EnemyDied         EventType = "EnemyDied"         // 敌人死亡（Amount = 奖励金币）
	EnemyLeaked       EventType = "EnemyLeaked"       // 敌人漏到终点（Amount = 基地伤害）
	WaveStarted       EventType = "WaveStarted"       // 波次开始生成
	WaveCompleted     EventType = "WaveCompleted"     // 波次完成（Amount = 奖励金币）
	AllWavesCompleted EventType = "AllWavesCompleted" // 所有波次完成
	GameOver          EventType = "GameOver"          // 失败
	Victory           EventType = "Victory"           // 胜利
	TowerPlaced       EventType = "TowerPlaced"       // 防御塔建造（Amount = 花费）
	TowerUpgraded     EventType = "TowerUpgraded"     // 防御塔升级（Amount = 花费）
	TowerSold         EventType = "TowerSold"         // 防御塔出售（Amount = 返还）
)

// Event 一次通知
// 不同事件类型使用的字段不同，未使用的字段为零值
type Event struct {
	Type      EventType
	Time      float64      // 事件发生时的模拟时间（秒）
	Entity    ecs.EntityID // 相关实体（敌人或防御塔）
	Kind      string       // 敌人/防御塔类型ID
	WaveIndex int          // 相关波次（0-based），与波次无关时为 -1
	Amount    int          // 金币或伤害数值
}

// String 返回便于日志输出的描述
func (e Event) String() string {
	return fmt.Sprintf("%s(t=%.2f entity=%d kind=%s wave=%d amount=%d)",
		e.Type, e.Time, e.Entity, e.Kind, e.WaveIndex, e.Amount)
}
