// Package seed populates the database with realistic development data.
package seed

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Password is the shared plaintext password for all seeded accounts.
const Password = "password123"

var skillPool = []string{
	"Go", "JavaScript", "TypeScript", "Python", "React", "Node.js",
	"MongoDB", "PostgreSQL", "Redis", "Docker", "Kubernetes", "AWS",
	"GraphQL", "gRPC", "Terraform",
}

type Seeder struct {
	db       *database.Mongo
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
}

func NewSeeder(db *database.Mongo) *Seeder {
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		posts:    repository.NewPostRepository(db),
	}
}

// ClearAll empties every collection while keeping their indexes.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, coll := range []*struct {
		name string
		fn   func() error
	}{
		{"users", func() error { _, err := s.db.Users.DeleteMany(ctx, bson.M{}); return err }},
		{"profiles", func() error { _, err := s.db.Profiles.DeleteMany(ctx, bson.M{}); return err }},
		{"posts", func() error { _, err := s.db.Posts.DeleteMany(ctx, bson.M{}); return err }},
	} {
		if err := coll.fn(); err != nil {
			return fmt.Errorf("clearing %s: %w", coll.name, err)
		}
	}
	return nil
}

// SeedUsers creates n accounts, all sharing the Password credential.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	// One hash for every account; hashing dominates seeding time otherwise.
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("%d.%s", i, gofakeit.Email())
		user := &models.User{
			Name:     gofakeit.Name(),
			Email:    email,
			Password: string(hash),
			Avatar:   models.GravatarURL(email),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedProfiles builds a profile with experience and education for each user.
func (s *Seeder) SeedProfiles(ctx context.Context, users []*models.User) error {
	for _, user := range users {
		nSkills := gofakeit.Number(2, 6)
		idx := seq(len(skillPool))
		gofakeit.ShuffleInts(idx)
		skills := make([]string, 0, nSkills)
		for _, i := range idx[:nSkills] {
			skills = append(skills, skillPool[i])
		}

		fields := repository.ProfileFields{
			Company:        gofakeit.Company(),
			Website:        gofakeit.URL(),
			Location:       fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
			Status:         gofakeit.JobTitle(),
			Skills:         skills,
			Bio:            gofakeit.Sentence(12),
			GithubUsername: gofakeit.Username(),
		}
		if gofakeit.Bool() {
			fields.Social = &models.SocialLinks{
				Twitter: "https://twitter.com/" + gofakeit.Username(),
				Youtube: "https://youtube.com/@" + gofakeit.Username(),
			}
		}

		if _, err := s.profiles.Upsert(ctx, user.ID, fields); err != nil {
			return fmt.Errorf("seeding profile for %s: %w", user.Email, err)
		}

		for i := 0; i < gofakeit.Number(1, 3); i++ {
			from := gofakeit.DateRange(
				time.Now().AddDate(-10, 0, 0),
				time.Now().AddDate(-1, 0, 0),
			)
			exp := models.Experience{
				ID:          primitive.NewObjectID(),
				Title:       gofakeit.JobTitle(),
				Company:     gofakeit.Company(),
				Location:    gofakeit.City(),
				From:        from,
				Current:     i == 0,
				Description: gofakeit.Sentence(10),
			}
			if !exp.Current {
				to := gofakeit.DateRange(from, time.Now())
				exp.To = &to
			}
			if _, err := s.profiles.AddExperience(ctx, user.ID, exp); err != nil {
				return err
			}
		}

		edu := models.Education{
			ID:           primitive.NewObjectID(),
			School:       gofakeit.Company() + " University",
			Degree:       "BSc",
			FieldOfStudy: "Computer Science",
			From:         gofakeit.DateRange(time.Now().AddDate(-15, 0, 0), time.Now().AddDate(-10, 0, 0)),
			Description:  gofakeit.Sentence(8),
		}
		if _, err := s.profiles.AddEducation(ctx, user.ID, edu); err != nil {
			return err
		}
	}
	return nil
}

// SeedPosts creates n posts by random users and sprinkles likes and comments
// from the rest of the mesh.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to post as")
	}

	for i := 0; i < n; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]

		post := &models.Post{
			User:      author.ID,
			Text:      gofakeit.Sentence(gofakeit.Number(5, 25)),
			Name:      author.Name,
			Avatar:    author.Avatar,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
			Likes:     []models.Like{},
			Comments:  []models.Comment{},
		}

		for _, u := range users {
			if u.ID != author.ID && gofakeit.Number(0, 9) < 2 {
				post.Likes = append(post.Likes, models.Like{
					ID:   primitive.NewObjectID(),
					User: u.ID,
				})
			}
		}

		for j := 0; j < gofakeit.Number(0, 4); j++ {
			commenter := users[gofakeit.Number(0, len(users)-1)]
			post.Comments = append(post.Comments, models.Comment{
				ID:        primitive.NewObjectID(),
				User:      commenter.ID,
				Text:      gofakeit.Sentence(gofakeit.Number(3, 15)),
				Name:      commenter.Name,
				Avatar:    commenter.Avatar,
				CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
			})
		}

		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}
	}
	return nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
