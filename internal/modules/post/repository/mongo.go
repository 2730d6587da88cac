package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/devconnector/internal/entity"
	"anoa.com/devconnector/pkg/apperror"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

type postDocument struct {
	ID        string    `bson:"_id"`
	User      string    `bson:"user"`
	Text      string    `bson:"text"`
	Name      string    `bson:"name"`
	Avatar    string    `bson:"avatar"`
	CreatedAt time.Time `bson:"date"`
}

func (d postDocument) toEntity() (*entity.Post, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt post id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.User)
	if err != nil {
		return nil, fmt.Errorf("corrupt post owner %q: %w", d.User, err)
	}
	return &entity.Post{
		ID:        id,
		UserID:    userID,
		Text:      d.Text,
		Name:      d.Name,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
	}, nil
}

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection(postsCollection)}
}

func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	return err
}

func (r *mongoPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	_, err := r.coll.InsertOne(ctx, postDocument{
		ID:        post.ID.String(),
		User:      post.UserID.String(),
		Text:      post.Text,
		Name:      post.Name,
		Avatar:    post.Avatar,
		CreatedAt: post.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.toEntity()
}

func (r *mongoPostRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoPostRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Post, error) {
	return r.find(ctx, bson.M{"user": userID.String()})
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.M) ([]*entity.Post, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]*entity.Post, 0, len(docs))
	for _, d := range docs {
		p, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user": userID.String()})
	if err != nil {
		return 0, fmt.Errorf("delete posts by user: %w", err)
	}
	return res.DeletedCount, nil
}
