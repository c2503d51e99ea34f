package input_test

import (
	"context"
	"os"
	"testing"
	"time"

	"git.fiblab.net/sim/catchment/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := input.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db, coll := "catchment_test", "network_"+time.Now().Format("150405.000")
	defer client.Database(db).Collection(coll).Drop(ctx)

	length := 250.0
	nodes := []input.NodeDoc{{ID: 1, Lon: 116.3, Lat: 39.9}, {ID: 2, Lon: 116.301, Lat: 39.9}}
	edges := []input.EdgeDoc{{ID: 5, Source: 1, Target: 2, Length: &length, Highway: "footway"}}
	require.NoError(t, input.SaveMongo(ctx, client, db, coll, nodes, edges))

	src, err := input.LoadMongo(ctx, client, db, coll)
	require.NoError(t, err)
	assert.Len(t, src.Nodes, 2)
	require.Len(t, src.Edges, 1)
	assert.Equal(t, 250.0, src.Edges[0].Length)
	assert.Equal(t, "footway", src.Edges[0].Highway)
}
