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

const (
	profilesCollection = "profiles"
	usersCollection    = "users"
)

type socialDocument struct {
	Youtube   string `bson:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
}

type experienceDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Company     string     `bson:"company"`
	Location    string     `bson:"location,omitempty"`
	From        time.Time  `bson:"from"`
	To          *time.Time `bson:"to,omitempty"`
	Current     bool       `bson:"current"`
	Description string     `bson:"description,omitempty"`
}

type educationDocument struct {
	ID           string     `bson:"_id"`
	School       string     `bson:"school"`
	Degree       string     `bson:"degree"`
	FieldOfStudy string     `bson:"fieldofstudy"`
	From         time.Time  `bson:"from"`
	To           *time.Time `bson:"to,omitempty"`
	Current      bool       `bson:"current"`
	Description  string     `bson:"description,omitempty"`
}

type profileDocument struct {
	ID             string               `bson:"_id"`
	User           string               `bson:"user"`
	Company        string               `bson:"company,omitempty"`
	Website        string               `bson:"website,omitempty"`
	Location       string               `bson:"location,omitempty"`
	Status         string               `bson:"status"`
	Skills         []string             `bson:"skills"`
	Bio            string               `bson:"bio,omitempty"`
	GithubUsername string               `bson:"githubusername,omitempty"`
	Social         socialDocument       `bson:"social"`
	Experience     []experienceDocument `bson:"experience"`
	Education      []educationDocument  `bson:"education"`
	CreatedAt      time.Time            `bson:"date"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

type ownerDocument struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name"`
	Avatar string `bson:"avatar"`
}

func toProfileDocument(p *entity.Profile) profileDocument {
	doc := profileDocument{
		ID:             p.ID.String(),
		User:           p.UserID.String(),
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Social:         socialDocument(p.Social),
		Experience:     make([]experienceDocument, 0, len(p.Experience)),
		Education:      make([]educationDocument, 0, len(p.Education)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, exp := range p.Experience {
		doc.Experience = append(doc.Experience, experienceDocument{
			ID:          exp.ID.String(),
			Title:       exp.Title,
			Company:     exp.Company,
			Location:    exp.Location,
			From:        exp.From,
			To:          exp.To,
			Current:     exp.Current,
			Description: exp.Description,
		})
	}
	for _, edu := range p.Education {
		doc.Education = append(doc.Education, educationDocument{
			ID:           edu.ID.String(),
			School:       edu.School,
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			From:         edu.From,
			To:           edu.To,
			Current:      edu.Current,
			Description:  edu.Description,
		})
	}
	return doc
}

func (d profileDocument) toEntity() (*entity.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt profile id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.User)
	if err != nil {
		return nil, fmt.Errorf("corrupt profile owner %q: %w", d.User, err)
	}

	p := &entity.Profile{
		ID:             id,
		UserID:         userID,
		Company:        d.Company,
		Website:        d.Website,
		Location:       d.Location,
		Status:         d.Status,
		Skills:         d.Skills,
		Bio:            d.Bio,
		GithubUsername: d.GithubUsername,
		Social:         entity.Social(d.Social),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, exp := range d.Experience {
		expID, err := uuid.Parse(exp.ID)
		if err != nil {
			return nil, fmt.Errorf("corrupt experience id %q: %w", exp.ID, err)
		}
		p.Experience = append(p.Experience, entity.Experience{
			ID:          expID,
			Title:       exp.Title,
			Company:     exp.Company,
			Location:    exp.Location,
			From:        exp.From,
			To:          exp.To,
			Current:     exp.Current,
			Description: exp.Description,
		})
	}
	for _, edu := range d.Education {
		eduID, err := uuid.Parse(edu.ID)
		if err != nil {
			return nil, fmt.Errorf("corrupt education id %q: %w", edu.ID, err)
		}
		p.Education = append(p.Education, entity.Education{
			ID:           eduID,
			School:       edu.School,
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			From:         edu.From,
			To:           edu.To,
			Current:      edu.Current,
			Description:  edu.Description,
		})
	}
	return p, nil
}

type mongoProfileRepository struct {
	profiles *mongo.Collection
	users    *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) ProfileRepository {
	return &mongoProfileRepository{
		profiles: db.Collection(profilesCollection),
		users:    db.Collection(usersCollection),
	}
}

// EnsureMongoIndexes enforces one profile per user.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(profilesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *mongoProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var doc profileDocument
	if err := r.profiles.FindOne(ctx, bson.M{"user": userID.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	profiles, err := r.attachOwners(ctx, []profileDocument{doc})
	if err != nil {
		return nil, err
	}
	return profiles[0], nil
}

func (r *mongoProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error) {
	if len(userIDs) == 0 {
		return []*entity.Profile{}, nil
	}
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": ids}}, options.Find())
}

func (r *mongoProfileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *mongoProfileRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Profile, error) {
	cur, err := r.profiles.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []profileDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return r.attachOwners(ctx, docs)
}

// attachOwners converts documents and fills User from the users collection in one query.
func (r *mongoProfileRepository) attachOwners(ctx context.Context, docs []profileDocument) ([]*entity.Profile, error) {
	profiles := make([]*entity.Profile, 0, len(docs))
	if len(docs) == 0 {
		return profiles, nil
	}

	ownerIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		ownerIDs = append(ownerIDs, d.User)
	}

	cur, err := r.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ownerIDs}},
		options.Find().SetProjection(bson.M{"name": 1, "avatar": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("load profile owners: %w", err)
	}
	defer cur.Close(ctx)

	var owners []ownerDocument
	if err := cur.All(ctx, &owners); err != nil {
		return nil, fmt.Errorf("decode profile owners: %w", err)
	}
	byID := make(map[string]ownerDocument, len(owners))
	for _, o := range owners {
		byID[o.ID] = o
	}

	for _, d := range docs {
		p, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		if o, ok := byID[d.User]; ok {
			p.User = &entity.User{ID: p.UserID, Name: o.Name, Avatar: o.Avatar}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (r *mongoProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now().UTC()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if _, err := r.profiles.InsertOne(ctx, toProfileDocument(profile)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *mongoProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	res, err := r.profiles.ReplaceOne(ctx, bson.M{"_id": profile.ID.String()}, toProfileDocument(profile))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *mongoProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.profiles.DeleteOne(ctx, bson.M{"user": userID.String()}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
