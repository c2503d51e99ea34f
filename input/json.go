package input

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"git.fiblab.net/sim/catchment/router"
)

type jsonNetwork struct {
	Nodes []NodeDoc `json:"nodes"`
	Edges []EdgeDoc `json:"edges"`
}

// 读取JSON格式路网文件 {"nodes": [...], "edges": [...]}
func LoadJSON(path string) (*router.Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return DecodeJSON(file)
}

func DecodeJSON(r io.Reader) (*router.Source, error) {
	var doc jsonNetwork
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode network json: %w", err)
	}
	log.Infof("decoded network json: %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	return docsToSource(doc.Nodes, doc.Edges)
}
