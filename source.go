package main

import (
	"context"
	"fmt"
	"strings"

	"git.fiblab.net/sim/catchment/input"
	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/store"
)

// 内置的3*3测试网格
const GRID_SOURCE = "grid"

// 按路径读取路网数据源
type SourceLoader func(ctx context.Context, path string) (*router.Source, error)

// 根据路径格式选择loader
// grid -> 内置网格；*.pbf -> OSM；*.json -> JSON；*.db/*.sqlite -> SQLite；{db}.{col} -> MongoDB
func NewSourceLoader(mongoURI string) SourceLoader {
	return func(ctx context.Context, pathStr string) (*router.Source, error) {
		if strings.TrimSpace(pathStr) == GRID_SOURCE {
			return router.SimpleGridSource(), nil
		}
		path, err := NewPath(pathStr)
		if err != nil {
			return nil, err
		}
		if path == nil {
			return nil, fmt.Errorf("empty map path")
		}
		if !path.IsFile() {
			if mongoURI == "" {
				return nil, fmt.Errorf("mongo uri is required to load %s", path)
			}
			client, err := input.NewMongoClient(ctx, mongoURI)
			if err != nil {
				return nil, err
			}
			defer client.Disconnect(context.Background())
			return input.LoadMongo(ctx, client, path.DB, path.Coll)
		}
		switch path.Ext() {
		case ".pbf":
			return input.LoadOSM(ctx, path.File)
		case ".json":
			return input.LoadJSON(path.File)
		case ".db", ".sqlite", ".sqlite3":
			s, err := store.NewSQLiteStore(path.File)
			if err != nil {
				return nil, err
			}
			defer s.Close()
			return s.LoadNetwork(ctx)
		default:
			return nil, fmt.Errorf("unsupported map file format: %s", path.File)
		}
	}
}
