package repository

import (
	"context"
	"time"

	"devconnect/internal/database"
	"devconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations, including
// the embedded likes and comments arrays.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	AddLike(ctx context.Context, postID primitive.ObjectID, like models.Like) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

type mongoPostRepository struct {
	posts *mongo.Collection
}

// NewPostRepository creates a post repository backed by the posts collection.
func NewPostRepository(db *database.Mongo) PostRepository {
	return &mongoPostRepository{posts: db.Posts}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	res, err := r.posts.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns all posts, newest first.
func (r *mongoPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

// DeleteByUser removes every post owned by userID. Part of the account
// deletion cascade.
func (r *mongoPostRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.posts.DeleteMany(ctx, bson.M{"user": userID})
	return err
}

// AddLike prepends the like. The filter excludes posts the user already
// liked, so a concurrent duplicate cannot slip into the array.
func (r *mongoPostRepository) AddLike(ctx context.Context, postID primitive.ObjectID, like models.Like) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":        postID,
		"likes.user": bson.M{"$ne": like.User},
	}
	update := bson.M{
		"$push": bson.M{
			"likes": bson.M{"$each": bson.A{like}, "$position": 0},
		},
	}

	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Callers check post existence first, so an unmatched filter means
		// the guard rejected a duplicate.
		return models.NewConflictError("Post already liked")
	}
	return nil
}

func (r *mongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"likes": bson.M{"user": userID}},
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	if res.ModifiedCount == 0 {
		return models.NewConflictError("Post has not yet been liked")
	}
	return nil
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$push": bson.M{
			"comments": bson.M{"$each": bson.A{comment}, "$position": 0},
		},
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

// RemoveComment pulls the comment by its own id. The splice is never keyed
// by the requester's identity.
func (r *mongoPostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	if res.ModifiedCount == 0 {
		return models.NewNotFoundError("Comment does not exist")
	}
	return nil
}
