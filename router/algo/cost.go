package algo

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

var (
	carBlockedHighways        = []string{"footway", "cycleway", "path", "steps"}
	cyclingBlockedHighways    = []string{"motorway", "trunk", "steps"}
	wheelchairBlockedHighways = []string{"steps", "path"}
	wheelchairSurfaces        = []string{"paved", "asphalt", "concrete"}
)

// 通行时间/s = (length/1000) / speed * 3600
func TravelTime(length, speedKmh float64) (float64, error) {
	if length < 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLength, length)
	}
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSpeed, speedKmh)
	}
	return (length / 1000) / speedKmh * 3600, nil
}

// 计算并缓存指定出行方式的cost，speed为nil时采用默认速度
func (e *Edge) CalculateCost(mode RoutingMode, speed *float64) (float64, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	v := mode.DefaultSpeed()
	if speed != nil {
		v = *speed
	}
	cost, err := TravelTime(e.Length, v)
	if err != nil {
		return 0, fmt.Errorf("edge(id=%d) %v cost: %w", e.ID, mode, err)
	}
	if e.Costs == nil {
		e.Costs = make(map[RoutingMode]float64)
	}
	e.Costs[mode] = cost
	return cost, nil
}

// 边对指定出行方式是否可通行，Highway/Surface为空视为缺失
func (e *Edge) IsAccessible(mode RoutingMode) bool {
	switch mode {
	case Car:
		return !lo.Contains(carBlockedHighways, e.Highway)
	case Walking:
		return true
	case Cycling:
		return !lo.Contains(cyclingBlockedHighways, e.Highway)
	case Wheelchair:
		surfaceOk := e.Surface == "" || lo.Contains(wheelchairSurfaces, e.Surface)
		return surfaceOk && !lo.Contains(wheelchairBlockedHighways, e.Highway)
	default:
		return false
	}
}
