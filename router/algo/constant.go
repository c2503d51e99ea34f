package algo

import (
	"errors"
)

const (
	// 各出行方式的默认速度 km/h
	WALKING_SPEED    = 5.0
	CYCLING_SPEED    = 15.0
	CAR_SPEED        = 50.0
	WHEELCHAIR_SPEED = 4.0

	// 地球半径/m
	EARTH_RADIUS = 6_371_000.0
)

var (
	// 错误：节点不存在
	ErrNodeNotFound = errors.New("node not found")
	// 错误：节点ID重复
	ErrDuplicateNode = errors.New("duplicate node id")
	// 错误：边ID重复
	ErrDuplicateEdge = errors.New("duplicate edge id")
	// 错误：图结构不一致
	ErrInconsistentGraph = errors.New("inconsistent graph")
	// 错误：边长度为负数或非有限值
	ErrInvalidLength = errors.New("edge length must be finite and non-negative")
	// 错误：速度非正或非有限值
	ErrInvalidSpeed = errors.New("speed must be finite and positive")
	// 错误：cost阈值为负数或NaN
	ErrInvalidCost = errors.New("cost threshold must be non-negative")
	// 错误：未知的出行方式
	ErrUnknownMode = errors.New("unknown routing mode")
)
