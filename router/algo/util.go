package algo

import (
	"math"

	"github.com/paulmach/orb"
)

// 球面距离/m，输入为经纬度(lon, lat)
func Haversine(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EARTH_RADIUS * math.Asin(math.Min(1, math.Sqrt(h)))
}

// 赤道附近每米对应的经纬度
func MetersToDegrees(m float64) float64 {
	return m / (EARTH_RADIUS * math.Pi / 180)
}
