package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the MongoDB implementations' behavior,
// including their error messages, so handler tests exercise the full contract
// without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.NewValidationError("User already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User not found")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return models.NewNotFoundError("User not found")
	}
	delete(r.users, id)
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]*models.Profile // keyed by owner user id
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]*models.Profile)}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, userID primitive.ObjectID, fields repository.ProfileFields) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = &models.Profile{
			ID:         primitive.NewObjectID(),
			UserID:     userID,
			Experience: []models.Experience{},
			Education:  []models.Education{},
		}
		r.profiles[userID] = p
	}
	p.Status = fields.Status
	p.Skills = fields.Skills
	p.UpdatedAt = time.Now().UTC()
	if fields.Company != "" {
		p.Company = fields.Company
	}
	if fields.Website != "" {
		p.Website = fields.Website
	}
	if fields.Location != "" {
		p.Location = fields.Location
	}
	if fields.Bio != "" {
		p.Bio = fields.Bio
	}
	if fields.GithubUsername != "" {
		p.GithubUsername = fields.GithubUsername
	}
	if fields.Social != nil {
		p.Social = fields.Social
	}
	return p, nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile not found")
	}
	return p, nil
}

func (r *fakeProfileRepo) List(_ context.Context) ([]*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

func (r *fakeProfileRepo) AddExperience(_ context.Context, userID primitive.ObjectID, exp models.Experience) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile not found")
	}
	p.Experience = append([]models.Experience{exp}, p.Experience...)
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

func (r *fakeProfileRepo) RemoveExperience(_ context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile not found")
	}
	for i, e := range p.Experience {
		if e.ID == expID {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("Experience not found")
}

func (r *fakeProfileRepo) AddEducation(_ context.Context, userID primitive.ObjectID, edu models.Education) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile not found")
	}
	p.Education = append([]models.Education{edu}, p.Education...)
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

func (r *fakeProfileRepo) RemoveEducation(_ context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile not found")
	}
	for i, e := range p.Education {
		if e.ID == eduID {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("Education not found")
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post not found")
	}
	return p, nil
}

func (r *fakePostRepo) List(_ context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return models.NewNotFoundError("Post not found")
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.User == userID {
			delete(r.posts, id)
		}
	}
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID primitive.ObjectID, like models.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post not found")
	}
	if p.LikedBy(like.User) {
		return models.NewConflictError("Post already liked")
	}
	p.Likes = append([]models.Like{like}, p.Likes...)
	return nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post not found")
	}
	for i, l := range p.Likes {
		if l.User == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return nil
		}
	}
	return models.NewConflictError("Post has not yet been liked")
}

func (r *fakePostRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post not found")
	}
	p.Comments = append([]models.Comment{comment}, p.Comments...)
	return nil
}

func (r *fakePostRepo) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post not found")
	}
	for i, cm := range p.Comments {
		if cm.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Comment does not exist")
}
