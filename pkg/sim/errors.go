package sim

import "errors"

// 玩家操作被拒绝时返回的错误，使用 errors.Is 判断
// 被拒绝的操作不会修改任何状态
var (
	ErrInsufficientGold = errors.New("insufficient gold")
	ErrInvalidPosition  = errors.New("invalid tower position")
	ErrUnknownTowerType = errors.New("unknown tower type")
	ErrUnknownTower     = errors.New("unknown tower")
	ErrMaxLevelReached  = errors.New("tower is already at max level")
	ErrGameEnded        = errors.New("game has ended")
)
