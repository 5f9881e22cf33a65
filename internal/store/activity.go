package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Activity 作者近期提交窗口的 redis 实现。
// 指纹键带 TTL，多实例共享，不依赖进程内状态。
type Activity struct {
	rdb    *redis.Client
	window time.Duration
}

func NewActivity(rdb *redis.Client, window time.Duration) *Activity {
	return &Activity{rdb: rdb, window: window}
}

// SeenRecently SETNX 一步完成登记和查重：写不进去说明窗口内已出现过。
// 并发提交可能互相都写成功导致漏报一次，可接受（见 ActivityWindow 约定）。
func (a *Activity) SeenRecently(ctx context.Context, userID uint, fingerprint string) (bool, error) {
	key := fmt.Sprintf("songlin:dup:%d:%s", userID, fingerprint)
	created, err := a.rdb.SetNX(ctx, key, 1, a.window).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}
