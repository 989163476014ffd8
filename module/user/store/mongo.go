package store

import (
	"context"

	"Connectify/module/user/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserStore struct {
	DB *mongo.Database
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{DB: db}
}

func (s *MongoUserStore) coll() *mongo.Collection {
	return s.DB.Collection(model.UserTableName)
}

func (s *MongoUserStore) Insert(ctx context.Context, u *model.User) error {
	_, err := s.coll().InsertOne(ctx, u)
	return err
}

func (s *MongoUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.coll().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.coll().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *MongoUserStore) SetStatus(ctx context.Context, id, status string, lastSeenMS int64) error {
	_, err := s.coll().UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": status, "last_seen": lastSeenMS},
	})
	return err
}
