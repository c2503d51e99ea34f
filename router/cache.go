package router

import (
	"context"
	"fmt"
	"strconv"

	"git.fiblab.net/sim/catchment/router/algo"
)

// 等时圈结果缓存
// Get未命中时返回nil, nil
type IsochroneCache interface {
	Get(ctx context.Context, key string) (*algo.IsochroneResult, error)
	Set(ctx context.Context, key string, result *algo.IsochroneResult) error
}

// 缓存key包含图版本，重新加载后旧结果自然失效
func isochroneCacheKey(mode algo.RoutingMode, version string, start algo.NodeID, maxCost float64) string {
	return fmt.Sprintf("%s:%s:%d:%s", mode, version, start, strconv.FormatFloat(maxCost, 'g', -1, 64))
}
