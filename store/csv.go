package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"git.fiblab.net/sim/catchment/router"
)

var CSV_HEADER = []string{
	"start_node", "max_cost_seconds", "max_cost_minutes", "reachable_node",
	"travel_cost_seconds", "travel_cost_minutes", "longitude", "latitude",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// 按CSV_HEADER的列顺序写出等时圈结果
func WriteIsochroneCSV(w io.Writer, rows []router.IsochroneRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSV_HEADER); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.StartNode), 10),
			formatFloat(r.MaxCostSeconds),
			formatFloat(r.MaxCostMinutes),
			strconv.FormatUint(uint64(r.ReachableNode), 10),
			formatFloat(r.TravelCostSeconds),
			formatFloat(r.TravelCostMinutes),
			formatFloat(r.Longitude),
			formatFloat(r.Latitude),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func SaveIsochroneCSV(path string, rows []router.IsochroneRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteIsochroneCSV(file, rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infof("wrote %d isochrone rows to %s", len(rows), path)
	return file.Close()
}
