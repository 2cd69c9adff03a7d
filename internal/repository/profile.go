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

// ProfileFields carries the writable top-level profile fields for an upsert.
// Empty optional fields are left out of the update, so on an existing profile
// they retain their prior values.
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GithubUsername string
	Social         *models.SocialLinks
}

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, fields ProfileFields) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Delete(ctx context.Context, userID primitive.ObjectID) error
	AddExperience(ctx context.Context, userID primitive.ObjectID, exp models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error)
	AddEducation(ctx context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error)
}

type mongoProfileRepository struct {
	profiles *mongo.Collection
}

// NewProfileRepository creates a profile repository backed by the profiles collection.
func NewProfileRepository(db *database.Mongo) ProfileRepository {
	return &mongoProfileRepository{profiles: db.Profiles}
}

// Upsert updates the profile owned by userID, inserting it when missing.
// The unique index on the user field guarantees at most one document per user.
func (r *mongoProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, fields ProfileFields) (*models.Profile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"status":    fields.Status,
		"skills":    fields.Skills,
		"updatedAt": time.Now().UTC(),
	}
	if fields.Company != "" {
		set["company"] = fields.Company
	}
	if fields.Website != "" {
		set["website"] = fields.Website
	}
	if fields.Location != "" {
		set["location"] = fields.Location
	}
	if fields.Bio != "" {
		set["bio"] = fields.Bio
	}
	if fields.GithubUsername != "" {
		set["githubUsername"] = fields.GithubUsername
	}
	if fields.Social != nil {
		set["social"] = fields.Social
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"user":       userID,
			"experience": []models.Experience{},
			"education":  []models.Education{},
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile models.Profile
	if err := r.profiles.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var profile models.Profile
	err := r.profiles.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.profiles.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []*models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Delete removes the profile owned by userID. Deleting an absent profile is
// not an error; account deletion proceeds to the user record either way.
func (r *mongoProfileRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.profiles.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

func (r *mongoProfileRepository) AddExperience(ctx context.Context, userID primitive.ObjectID, exp models.Experience) (*models.Profile, error) {
	return r.prepend(ctx, userID, "experience", exp)
}

func (r *mongoProfileRepository) AddEducation(ctx context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error) {
	return r.prepend(ctx, userID, "education", edu)
}

// prepend pushes entry to the front of the named array field, keeping the
// list most-recent-first.
func (r *mongoProfileRepository) prepend(ctx context.Context, userID primitive.ObjectID, field string, entry interface{}) (*models.Profile, error) {
	tctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$push": bson.M{
			field: bson.M{"$each": bson.A{entry}, "$position": 0},
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.profiles.UpdateOne(tctx, bson.M{"user": userID}, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, models.NewNotFoundError("Profile not found")
	}
	return r.GetByUserID(ctx, userID)
}

func (r *mongoProfileRepository) RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	return r.pull(ctx, userID, "experience", expID, "Experience not found")
}

func (r *mongoProfileRepository) RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	return r.pull(ctx, userID, "education", eduID, "Education not found")
}

// pull removes exactly one entry by its own id. An unknown id is an explicit
// not-found, not a silent no-op.
func (r *mongoProfileRepository) pull(ctx context.Context, userID primitive.ObjectID, field string, entryID primitive.ObjectID, missing string) (*models.Profile, error) {
	tctx, cancel := withTimeout(ctx)
	defer cancel()

	// No $set here: ModifiedCount must reflect the $pull alone so an
	// unknown entry id is detectable.
	update := bson.M{
		"$pull": bson.M{field: bson.M{"_id": entryID}},
	}

	res, err := r.profiles.UpdateOne(tctx, bson.M{"user": userID}, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, models.NewNotFoundError("Profile not found")
	}
	if res.ModifiedCount == 0 {
		return nil, models.NewNotFoundError(missing)
	}
	return r.GetByUserID(ctx, userID)
}
