package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

func (s *Store) jobs() *mongo.Collection {
	return s.db.Collection(collJobs)
}

// CreateJob inserts a new posting with a generated "job_" id.
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	if job.ID == "" {
		job.ID = newID("job")
	}
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := s.jobs().InsertOne(ctx, job)
	return translateWriteErr(err)
}

// GetJob fetches a posting by id.
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	if err := s.jobs().FindOne(ctx, bson.M{"id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListJobs pages through postings under the shared list-query contract.
func (s *Store) ListJobs(ctx context.Context, p query.Params) (*query.Result[model.Job], error) {
	return query.Find[model.Job](ctx, s.jobs(), p)
}

// UpdateJob applies a patch and refreshes updatedAt.
func (s *Store) UpdateJob(ctx context.Context, id string, patch bson.M) (*model.Job, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}

	res, err := s.jobs().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetJob(ctx, id)
}

// UpdateJobStatus switches a posting between active and inactive.
func (s *Store) UpdateJobStatus(ctx context.Context, id, status string) (*model.Job, error) {
	return s.UpdateJob(ctx, id, bson.M{"status": status})
}

// DeleteJob removes a posting; unknown ids report ErrNotFound.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	res, err := s.jobs().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// JobsWithApplicationCounts returns all postings decorated with how many
// applications each has received, via a $lookup against job_applications.
func (s *Store) JobsWithApplicationCounts(ctx context.Context) ([]model.JobWithApplicationCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collApplications,
			"localField":   "id",
			"foreignField": "jobId",
			"as":           "applications",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"applicationsCount": bson.M{"$size": "$applications"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"applications": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	cursor, err := s.jobs().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []model.JobWithApplicationCount{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
