package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

func (s *Store) applications() *mongo.Collection {
	return s.db.Collection(collApplications)
}

// jobLookupStages resolve the posting for each application into a
// jobDetails field.
func jobLookupStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         collJobs,
			"localField":   "jobId",
			"foreignField": "id",
			"as":           "jobDetails",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"jobDetails": bson.M{"$arrayElemAt": bson.A{"$jobDetails", 0}},
		}}},
	}
}

// CreateApplication inserts a candidate submission with a generated "app_"
// id and pending status.
func (s *Store) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	now := time.Now().UTC()
	if app.ID == "" {
		app.ID = newID("app")
	}
	if app.Status == "" {
		app.Status = model.ApplicationStatusPending
	}
	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := s.applications().InsertOne(ctx, app)
	return translateWriteErr(err)
}

// GetApplication fetches an application by id with its posting resolved.
func (s *Store) GetApplication(ctx context.Context, id string) (*model.ApplicationWithJob, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"id": id}}}}
	for _, stage := range jobLookupStages() {
		pipeline = append(pipeline, stage)
	}

	cursor, err := s.applications().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []model.ApplicationWithJob
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, ErrNotFound
	}
	return &apps[0], nil
}

// ListApplications pages through submissions with their postings resolved,
// under the shared list-query contract.
func (s *Store) ListApplications(ctx context.Context, p query.Params) (*query.Result[model.ApplicationWithJob], error) {
	return query.Aggregate[model.ApplicationWithJob](ctx, s.applications(), p, jobLookupStages()...)
}

// ApplicationExists reports whether the email has already applied to the
// posting, to reject duplicate submissions.
func (s *Store) ApplicationExists(ctx context.Context, email, jobID string) (bool, error) {
	err := s.applications().FindOne(ctx, bson.M{
		"email": strings.ToLower(strings.TrimSpace(email)),
		"jobId": jobID,
	}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateApplication applies a patch and refreshes updatedAt.
func (s *Store) UpdateApplication(ctx context.Context, id string, patch bson.M) (*model.ApplicationWithJob, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}

	res, err := s.applications().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetApplication(ctx, id)
}

// UpdateApplicationStatus moves a submission through review. Any status
// other than pending stamps reviewedAt; moving back to pending clears it.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id, status string) (*model.ApplicationWithJob, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if status != model.ApplicationStatusPending {
		set["reviewedAt"] = time.Now().UTC()
	} else {
		set["reviewedAt"] = nil
	}

	res, err := s.applications().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetApplication(ctx, id)
}

// DeleteApplication removes a submission; unknown ids report ErrNotFound.
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	res, err := s.applications().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplicationStats counts submissions per review status, optionally scoped
// to one posting.
func (s *Store) ApplicationStats(ctx context.Context, jobID string) (*model.ApplicationStats, error) {
	match := bson.M{}
	if jobID != "" {
		match["jobId"] = jobID
	}

	cursor, err := s.applications().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &model.ApplicationStats{}
	for _, r := range rows {
		switch r.Status {
		case model.ApplicationStatusPending:
			stats.Pending = r.Count
		case model.ApplicationStatusReviewing:
			stats.Reviewing = r.Count
		case model.ApplicationStatusAccepted:
			stats.Accepted = r.Count
		case model.ApplicationStatusRejected:
			stats.Rejected = r.Count
		}
	}
	return stats, nil
}

// ApplicationsGroupedByJob rolls up submissions per posting with per-status
// counts, for the admin review board.
func (s *Store) ApplicationsGroupedByJob(ctx context.Context) ([]model.JobApplicationGroup, error) {
	statusCount := func(status string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
		}}}
	}

	pipeline := mongo.Pipeline{
		jobLookupStages()[0],
		jobLookupStages()[1],
		bson.D{{Key: "$group", Value: bson.M{
			"_id":          "$jobId",
			"jobDetails":   bson.M{"$first": "$jobDetails"},
			"applications": bson.M{"$push": "$$ROOT"},
			"total":        bson.M{"$sum": 1},
			"pending":      statusCount(model.ApplicationStatusPending),
			"reviewing":    statusCount(model.ApplicationStatusReviewing),
			"accepted":     statusCount(model.ApplicationStatusAccepted),
			"rejected":     statusCount(model.ApplicationStatusRejected),
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":        0,
			"jobId":      "$_id",
			"jobDetails": 1,
			"applications": bson.M{"$sortArray": bson.M{
				"input":  "$applications",
				"sortBy": bson.M{"createdAt": -1},
			}},
			"statistics": bson.M{
				"total":     "$total",
				"pending":   "$pending",
				"reviewing": "$reviewing",
				"accepted":  "$accepted",
				"rejected":  "$rejected",
			},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "jobDetails.createdAt", Value: -1}}}},
	}

	cursor, err := s.applications().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []model.JobApplicationGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
