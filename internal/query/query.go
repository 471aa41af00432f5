// Package query implements the shared list-query contract: normalizing
// pagination/sort/filter/search parameters from a request, translating them
// into MongoDB queries, and computing pagination metadata.
package query

import (
	"context"
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxLimit is the hard ceiling on page size. Client-requested limits are
// clamped to it regardless of the endpoint default, bounding response size
// and query cost.
const MaxLimit = 100

// Defaults hold the per-endpoint fallbacks applied when a parameter is
// missing or unusable.
type Defaults struct {
	Limit     int
	SortBy    string
	SortOrder string
}

// Params is a normalized list query. Build one with Parse; the zero value
// is not usable.
type Params struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Filter    map[string]any
	Search    string
}

// Parse normalizes raw URL query values into Params. Page is floored to 1,
// a missing/zero/negative limit falls back to the default, and any limit is
// clamped to MaxLimit. Equality filters and the search term are attached by
// the caller via WithFilter / WithSearch or read here from the conventional
// parameter names.
func Parse(values url.Values, d Defaults) Params {
	if d.Limit <= 0 || d.Limit > MaxLimit {
		d.Limit = MaxLimit
	}
	if d.SortBy == "" {
		d.SortBy = "createdAt"
	}
	if d.SortOrder == "" {
		d.SortOrder = "desc"
	}

	page := queryInt(values, "page", 1)
	if page < 1 {
		page = 1
	}

	limit := queryInt(values, "limit", d.Limit)
	if limit <= 0 {
		limit = d.Limit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortBy := values.Get("sortBy")
	if sortBy == "" {
		sortBy = d.SortBy
	}
	sortOrder := values.Get("sortOrder")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = d.SortOrder
	}

	return Params{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Filter:    map[string]any{},
		Search:    values.Get("search"),
	}
}

// WithFilter returns a copy of p with an equality filter added. Filters are
// always combined by logical AND.
func (p Params) WithFilter(field string, value any) Params {
	f := make(map[string]any, len(p.Filter)+1)
	for k, v := range p.Filter {
		f[k] = v
	}
	f[field] = value
	p.Filter = f
	return p
}

// WithSearch returns a copy of p with the free-text search term set.
func (p Params) WithSearch(term string) Params {
	p.Search = term
	return p
}

// Skip returns the number of documents to skip for the current page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Selector builds the MongoDB filter document. Equality filters and the
// $text search condition are ANDed; search never widens a result set.
func (p Params) Selector() bson.M {
	sel := bson.M{}
	for k, v := range p.Filter {
		sel[k] = v
	}
	if p.Search != "" {
		sel["$text"] = bson.M{"$search": p.Search}
	}
	return sel
}

// SortDirection returns the MongoDB sort direction for the params.
func (p Params) SortDirection() int {
	if p.SortOrder == "asc" {
		return 1
	}
	return -1
}

// FindOptions builds the find options (sort, skip, limit) for the bounded
// page fetch.
func (p Params) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: p.SortBy, Value: p.SortDirection()}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
}

// Pagination is the metadata block returned alongside every list.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

// Paginate computes pagination metadata for a total match count.
// totalPages = ceil(totalCount/limit); a page beyond the last is not an
// error, it simply has no next page and an empty item list.
func Paginate(totalCount int64, p Params) Pagination {
	totalPages := int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
		Limit:       p.Limit,
	}
}

// Result is a page of items plus its pagination metadata.
type Result[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Find runs the two-query list contract against a collection: a count of
// all matching documents (ignoring pagination) followed by the bounded,
// sorted page fetch. Extra find options (e.g. a projection) are merged in.
func Find[T any](ctx context.Context, coll *mongo.Collection, p Params, extra ...*options.FindOptions) (*Result[T], error) {
	sel := p.Selector()

	totalCount, err := coll.CountDocuments(ctx, sel)
	if err != nil {
		return nil, err
	}

	opts := append([]*options.FindOptions{p.FindOptions()}, extra...)
	cursor, err := coll.Find(ctx, sel, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, p.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return &Result[T]{
		Items:      items,
		Pagination: Paginate(totalCount, p),
	}, nil
}

// Aggregate runs the list contract through an aggregation pipeline instead
// of a plain find, for lists that need $lookup stages. The provided stages
// are appended after the $match and before $sort/$skip/$limit.
func Aggregate[T any](ctx context.Context, coll *mongo.Collection, p Params, stages ...bson.D) (*Result[T], error) {
	sel := p.Selector()

	totalCount, err := coll.CountDocuments(ctx, sel)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: sel}}}
	pipeline = append(pipeline, stages...)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: p.SortBy, Value: p.SortDirection()}}}},
		bson.D{{Key: "$skip", Value: p.Skip()}},
		bson.D{{Key: "$limit", Value: int64(p.Limit)}},
	)

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, p.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return &Result[T]{
		Items:      items,
		Pagination: Paginate(totalCount, p),
	}, nil
}

func queryInt(values url.Values, key string, defaultVal int) int {
	val := values.Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
