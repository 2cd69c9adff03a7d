package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Experience is an entry in a profile's work history. Entries are kept
// most-recent-first; removal is keyed by the entry's own id.
type Experience struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Company     string             `bson:"company" json:"company"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time          `bson:"from" json:"from"`
	To          *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool               `bson:"current" json:"current"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// Education mirrors Experience for schooling history.
type Education struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	School       string             `bson:"school" json:"school"`
	Degree       string             `bson:"degree" json:"degree"`
	FieldOfStudy string             `bson:"fieldOfStudy" json:"fieldOfStudy"`
	From         time.Time          `bson:"from" json:"from"`
	To           *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool               `bson:"current" json:"current"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

// SocialLinks holds the optional social media URLs on a profile.
type SocialLinks struct {
	Youtube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

// ProfileOwner is the minimal slice of the owning user joined into profile
// responses. Populated in responses only, never stored.
type ProfileOwner struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar"`
}

// Profile is the per-user profile document. At most one exists per user;
// writes go through an upsert keyed by the user id.
type Profile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         primitive.ObjectID `bson:"user" json:"user"`
	Owner          *ProfileOwner      `bson:"-" json:"owner,omitempty"`
	Company        string             `bson:"company,omitempty" json:"company,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Skills         []string           `bson:"skills" json:"skills"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	GithubUsername string             `bson:"githubUsername,omitempty" json:"githubUsername,omitempty"`
	Social         *SocialLinks       `bson:"social,omitempty" json:"social,omitempty"`
	Experience     []Experience       `bson:"experience" json:"experience"`
	Education      []Education        `bson:"education" json:"education"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"date"`
}

// ExperienceByID returns the experience entry with the given id.
func (p *Profile) ExperienceByID(id primitive.ObjectID) (*Experience, bool) {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			return &p.Experience[i], true
		}
	}
	return nil, false
}

// EducationByID returns the education entry with the given id.
func (p *Profile) EducationByID(id primitive.ObjectID) (*Education, bool) {
	for i := range p.Education {
		if p.Education[i].ID == id {
			return &p.Education[i], true
		}
	}
	return nil, false
}
