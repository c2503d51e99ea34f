package input

import (
	"context"
	"fmt"

	"git.fiblab.net/sim/catchment/router"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CLASS_NODE = "node"
	CLASS_EDGE = "edge"
)

// 集合中的文档格式 {class: "node"|"edge", data: {...}}
type classDoc struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// 从{db}.{col}读取路网
func LoadMongo(ctx context.Context, client *mongo.Client, db, coll string) (*router.Source, error) {
	c := client.Database(db).Collection(coll)
	cursor, err := c.Find(ctx, bson.M{"class": bson.M{"$in": bson.A{CLASS_NODE, CLASS_EDGE}}})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", db, coll, err)
	}
	defer cursor.Close(ctx)

	nodes := make([]NodeDoc, 0)
	edges := make([]EdgeDoc, 0)
	for cursor.Next(ctx) {
		var doc classDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s document: %w", db, coll, err)
		}
		switch doc.Class {
		case CLASS_NODE:
			var n NodeDoc
			if err := bson.Unmarshal(doc.Data, &n); err != nil {
				return nil, fmt.Errorf("failed to decode node: %w", err)
			}
			nodes = append(nodes, n)
		case CLASS_EDGE:
			var e EdgeDoc
			if err := bson.Unmarshal(doc.Data, &e); err != nil {
				return nil, fmt.Errorf("failed to decode edge: %w", err)
			}
			edges = append(edges, e)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s.%s: %w", db, coll, err)
	}
	log.Infof("downloaded %d nodes, %d edges from %s.%s", len(nodes), len(edges), db, coll)
	return docsToSource(nodes, edges)
}

// 写入{db}.{col}，覆盖已有内容
func SaveMongo(ctx context.Context, client *mongo.Client, db, coll string, nodes []NodeDoc, edges []EdgeDoc) error {
	c := client.Database(db).Collection(coll)
	if _, err := c.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear %s.%s: %w", db, coll, err)
	}
	docs := make([]any, 0, len(nodes)+len(edges))
	for _, n := range nodes {
		docs = append(docs, bson.M{"class": CLASS_NODE, "data": n})
	}
	for _, e := range edges {
		docs = append(docs, bson.M{"class": CLASS_EDGE, "data": e})
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := c.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert into %s.%s: %w", db, coll, err)
	}
	return nil
}
