package store

import (
	"context"
	"regexp"

	"Connectify/module/chat/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implementations of the store ports. Not-found is surfaced as
// (nil, nil) / (false, nil); only transport/driver failures are errors.

type MongoChannelStore struct {
	DB *mongo.Database
}

func NewMongoChannelStore(db *mongo.Database) *MongoChannelStore {
	return &MongoChannelStore{DB: db}
}

func (s *MongoChannelStore) coll() *mongo.Collection {
	return s.DB.Collection(model.ChannelTableName)
}

func (s *MongoChannelStore) Insert(ctx context.Context, ch *model.Channel) error {
	_, err := s.coll().InsertOne(ctx, ch)
	return err
}

func (s *MongoChannelStore) Get(ctx context.Context, id string) (*model.Channel, error) {
	var ch model.Channel
	err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&ch)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *MongoChannelStore) FindActiveByMember(ctx context.Context, userID string) ([]*model.Channel, error) {
	cur, err := s.coll().Find(ctx,
		bson.M{"members": userID, "active": true},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Channel
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoChannelStore) SetLastMessage(ctx context.Context, channelID, messageID string, atMS int64) error {
	_, err := s.coll().UpdateByID(ctx, channelID, bson.M{
		"$set": bson.M{"last_message": messageID, "updated_at": atMS},
	})
	return err
}

type MongoMessageStore struct {
	DB *mongo.Database
}

func NewMongoMessageStore(db *mongo.Database) *MongoMessageStore {
	return &MongoMessageStore{DB: db}
}

func (s *MongoMessageStore) coll() *mongo.Collection {
	return s.DB.Collection(model.MessageTableName)
}

func (s *MongoMessageStore) Insert(ctx context.Context, m *model.Message) error {
	_, err := s.coll().InsertOne(ctx, m)
	return err
}

func (s *MongoMessageStore) Get(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Newest-first sort; snowflake ids are fixed-width decimal strings, so the
// lexicographic id sort matches numeric order and breaks same-millisecond
// ties.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoMessageStore) FindByChannel(ctx context.Context, channelID string, skip, limit int64) ([]*model.Message, error) {
	cur, err := s.coll().Find(ctx,
		bson.M{"channel": channelID, "deleted": false},
		options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoMessageStore) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	return s.coll().CountDocuments(ctx, bson.M{"channel": channelID, "deleted": false})
}

func (s *MongoMessageStore) UpdateContent(ctx context.Context, id, sender, content string, editedAtMS int64) (bool, error) {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"_id": id, "sender": sender, "deleted": false},
		bson.M{"$set": bson.M{"content": content, "edited": true, "edited_at": editedAtMS}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoMessageStore) MarkDeleted(ctx context.Context, id, sender string, deletedAtMS int64) (bool, error) {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"_id": id, "sender": sender, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deleted_at": deletedAtMS}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoMessageStore) SetReactions(ctx context.Context, id string, reactions []model.Reaction) error {
	if reactions == nil {
		reactions = []model.Reaction{}
	}
	_, err := s.coll().UpdateByID(ctx, id, bson.M{"$set": bson.M{"reactions": reactions}})
	return err
}

func (s *MongoMessageStore) Search(ctx context.Context, query string, channelIDs []string, skip, limit int64) ([]*model.Message, int64, error) {
	filter := bson.M{
		"deleted": false,
		"channel": bson.M{"$in": channelIDs},
		"content": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}

	total, err := s.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := s.coll().Find(ctx, filter,
		options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
