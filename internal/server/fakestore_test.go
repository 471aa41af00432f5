package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
	"github.com/powershield/shield/internal/store"
)

// fakeStore is an in-memory implementation of the Store interface so the
// full route table can be exercised without a running MongoDB. Collections
// are slices in insertion order; lists return newest first like the real
// store's default sort.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int
	admins  []*model.AdminUser
	gallery []*model.GalleryItem
	contact []*model.Contact
	jobs    []*model.Job
	apps    []*model.JobApplication
	users   []*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%08x", prefix, f.nextID)
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

// newestFirst copies a slice in reverse insertion order.
func newestFirst[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, *items[i])
	}
	return out
}

// pageOf applies the pagination window to an already filtered, sorted
// slice.
func pageOf[T any](items []T, p query.Params) *query.Result[T] {
	total := int64(len(items))
	start := int(p.Skip())
	if start > len(items) {
		start = len(items)
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return &query.Result[T]{Items: out, Pagination: query.Paginate(total, p)}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// --- admins ---

func (f *fakeStore) CreateAdmin(ctx context.Context, admin *model.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == admin.Username || a.Email == admin.Email {
			return store.ErrDuplicate
		}
	}
	if admin.ID == "" {
		admin.ID = f.genID("admin")
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	cp := *admin
	f.admins = append(f.admins, &cp)
	return nil
}

func (f *fakeStore) GetAdminByID(ctx context.Context, id string) (*model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.ID == id {
			cp := a.Sanitized()
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindAdminByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == usernameOrEmail || a.Email == usernameOrEmail {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListAdmins(ctx context.Context, filter bson.M) ([]model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.AdminUser{}
	for i := len(f.admins) - 1; i >= 0; i-- {
		a := f.admins[i]
		if role, ok := filter["role"]; ok && string(a.Role) != role {
			continue
		}
		if active, ok := filter["isActive"]; ok && a.IsActive != active {
			continue
		}
		out = append(out, a.Sanitized())
	}
	return out, nil
}

func (f *fakeStore) UpdateAdmin(ctx context.Context, id string, patch bson.M) (*model.AdminUser, error) {
	f.mu.Lock()
	for _, a := range f.admins {
		if a.ID != id {
			continue
		}
		if v, ok := patch["username"].(string); ok {
			a.Username = v
		}
		if v, ok := patch["email"].(string); ok {
			a.Email = v
		}
		if v, ok := patch["hashedPassword"].(string); ok {
			a.HashedPassword = v
		}
		if v, ok := patch["role"].(model.Role); ok {
			a.Role = v
		}
		if v, ok := patch["isActive"].(bool); ok {
			a.IsActive = v
		}
		a.UpdatedAt = time.Now().UTC()
		f.mu.Unlock()
		return f.GetAdminByID(ctx, id)
	}
	f.mu.Unlock()
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateAdminStatus(ctx context.Context, id string, active bool) (*model.AdminUser, error) {
	return f.UpdateAdmin(ctx, id, bson.M{"isActive": active})
}

func (f *fakeStore) UpdateAdminLastLogin(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.ID == id {
			now := time.Now().UTC()
			a.LastLoginAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteAdmin(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.admins {
		if a.ID == id {
			f.admins = append(f.admins[:i], f.admins[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// --- gallery ---

func (f *fakeStore) CreateGalleryItem(ctx context.Context, item *model.GalleryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = primitive.NewObjectID()
	if item.Status == "" {
		item.Status = model.GalleryStatusActive
	}
	item.Views = 0
	item.Likes = 0
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	cp := *item
	f.gallery = append(f.gallery, &cp)
	return nil
}

func (f *fakeStore) findGallery(id string) *model.GalleryItem {
	for _, item := range f.gallery {
		if item.ID.Hex() == id {
			return item
		}
	}
	return nil
}

func (f *fakeStore) GetGalleryItem(ctx context.Context, id string) (*model.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item := f.findGallery(id); item != nil {
		cp := *item
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListGallery(ctx context.Context, p query.Params) (*query.Result[model.GalleryItem], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.GalleryItem{}
	for _, item := range newestFirst(f.gallery) {
		if status, ok := p.Filter["status"]; ok && item.Status != status {
			continue
		}
		if category, ok := p.Filter["category"]; ok && item.Category != category {
			continue
		}
		if featured, ok := p.Filter["featured"]; ok && item.Featured != featured {
			continue
		}
		if p.Search != "" && !containsFold(item.Title, p.Search) && !containsFold(item.Description, p.Search) {
			continue
		}
		matched = append(matched, item)
	}
	return pageOf(matched, p), nil
}

func (f *fakeStore) FeaturedGallery(ctx context.Context, limit int64) ([]model.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.GalleryItem{}
	for _, item := range newestFirst(f.gallery) {
		if item.Status == model.GalleryStatusActive && item.Featured && int64(len(out)) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateGalleryItem(ctx context.Context, id string, patch bson.M) (*model.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.findGallery(id)
	if item == nil {
		return nil, store.ErrNotFound
	}
	if v, ok := patch["title"].(string); ok {
		item.Title = v
	}
	if v, ok := patch["description"].(string); ok {
		item.Description = v
	}
	if v, ok := patch["category"].(string); ok {
		item.Category = v
	}
	if v, ok := patch["imageUrl"].(string); ok {
		item.ImageURL = v
	}
	if v, ok := patch["status"].(string); ok {
		item.Status = v
	}
	if v, ok := patch["featured"].(bool); ok {
		item.Featured = v
	}
	item.UpdatedAt = time.Now().UTC()
	cp := *item
	return &cp, nil
}

func (f *fakeStore) DeleteGalleryItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.gallery {
		if item.ID.Hex() == id {
			f.gallery = append(f.gallery[:i], f.gallery[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) IncrementGalleryViews(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item := f.findGallery(id); item != nil {
		item.Views++
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeStore) ToggleGalleryLike(ctx context.Context, id string, increment bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item := f.findGallery(id); item != nil {
		if increment {
			item.Likes++
		} else {
			item.Likes--
		}
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeStore) GalleryCategories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, item := range f.gallery {
		if item.Status != model.GalleryStatusActive || item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	return out, nil
}

func (f *fakeStore) GalleryStats(ctx context.Context) (*model.GalleryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.GalleryStats{Categories: map[string]int64{}}
	for _, item := range f.gallery {
		stats.Overall.TotalItems++
		stats.Overall.TotalViews += item.Views
		stats.Overall.TotalLikes += item.Likes
		stats.Categories[item.Category]++
	}
	if stats.Overall.TotalItems > 0 {
		stats.Overall.AvgViews = float64(stats.Overall.TotalViews) / float64(stats.Overall.TotalItems)
		stats.Overall.AvgLikes = float64(stats.Overall.TotalLikes) / float64(stats.Overall.TotalItems)
	}
	return stats, nil
}

// --- contacts ---

func (f *fakeStore) CreateContact(ctx context.Context, c *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Status = model.ContactStatusUnread
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	f.contact = append(f.contact, &cp)
	return nil
}

func (f *fakeStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contact {
		if c.ID.Hex() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListContacts(ctx context.Context, p query.Params) (*query.Result[model.Contact], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.Contact{}
	for _, c := range newestFirst(f.contact) {
		if status, ok := p.Filter["status"]; ok && c.Status != status {
			continue
		}
		if p.Search != "" && !containsFold(c.Name, p.Search) && !containsFold(c.Email, p.Search) && !containsFold(c.Message, p.Search) {
			continue
		}
		matched = append(matched, c)
	}
	return pageOf(matched, p), nil
}

func (f *fakeStore) UpdateContactStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contact {
		if c.ID.Hex() == id {
			c.Status = status
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteContact(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contact {
		if c.ID.Hex() == id {
			f.contact = append(f.contact[:i], f.contact[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) UnreadContactCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.contact {
		if c.Status == model.ContactStatusUnread {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ContactStats(ctx context.Context) (*model.ContactStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.ContactStats{}
	for _, c := range f.contact {
		stats.Total++
		switch c.Status {
		case model.ContactStatusUnread:
			stats.Unread++
		case model.ContactStatusRead:
			stats.Read++
		case model.ContactStatusReplied:
			stats.Replied++
		case model.ContactStatusArchived:
			stats.Archived++
		}
	}
	return stats, nil
}

// --- jobs ---

func (f *fakeStore) CreateJob(ctx context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.ID == "" {
		job.ID = f.genID("job")
	}
	if job.Status == "" {
		job.Status = model.JobStatusActive
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	cp := *job
	f.jobs = append(f.jobs, &cp)
	return nil
}

func (f *fakeStore) findJob(id string) *model.Job {
	for _, j := range f.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (f *fakeStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j := f.findJob(id); j != nil {
		cp := *j
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListJobs(ctx context.Context, p query.Params) (*query.Result[model.Job], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.Job{}
	for _, j := range newestFirst(f.jobs) {
		if status, ok := p.Filter["status"]; ok && j.Status != status {
			continue
		}
		if jobType, ok := p.Filter["type"]; ok && j.Type != jobType {
			continue
		}
		if location, ok := p.Filter["location"]; ok && j.Location != location {
			continue
		}
		if p.Search != "" && !containsFold(j.Title, p.Search) && !containsFold(j.Description, p.Search) {
			continue
		}
		matched = append(matched, j)
	}
	return pageOf(matched, p), nil
}

func (f *fakeStore) UpdateJob(ctx context.Context, id string, patch bson.M) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.findJob(id)
	if j == nil {
		return nil, store.ErrNotFound
	}
	if v, ok := patch["title"].(string); ok {
		j.Title = v
	}
	if v, ok := patch["description"].(string); ok {
		j.Description = v
	}
	if v, ok := patch["location"].(string); ok {
		j.Location = v
	}
	if v, ok := patch["type"].(string); ok {
		j.Type = v
	}
	if v, ok := patch["experience"].(string); ok {
		j.Experience = v
	}
	if v, ok := patch["salary"].(string); ok {
		j.Salary = v
	}
	if v, ok := patch["requirements"].([]string); ok {
		j.Requirements = v
	}
	if v, ok := patch["status"].(string); ok {
		j.Status = v
	}
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	return &cp, nil
}

func (f *fakeStore) UpdateJobStatus(ctx context.Context, id, status string) (*model.Job, error) {
	return f.UpdateJob(ctx, id, bson.M{"status": status})
}

func (f *fakeStore) DeleteJob(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID == id {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) JobsWithApplicationCounts(ctx context.Context) ([]model.JobWithApplicationCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range f.apps {
		counts[a.JobID]++
	}
	out := []model.JobWithApplicationCount{}
	for _, j := range newestFirst(f.jobs) {
		out = append(out, model.JobWithApplicationCount{Job: j, ApplicationsCount: counts[j.ID]})
	}
	return out, nil
}

// --- applications ---

func (f *fakeStore) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app.ID == "" {
		app.ID = f.genID("app")
	}
	if app.Status == "" {
		app.Status = model.ApplicationStatusPending
	}
	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	cp := *app
	f.apps = append(f.apps, &cp)
	return nil
}

func (f *fakeStore) withJob(app model.JobApplication) model.ApplicationWithJob {
	out := model.ApplicationWithJob{JobApplication: app}
	if j := f.findJob(app.JobID); j != nil {
		cp := *j
		out.JobDetails = &cp
	}
	return out
}

func (f *fakeStore) findApp(id string) *model.JobApplication {
	for _, a := range f.apps {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeStore) GetApplication(ctx context.Context, id string) (*model.ApplicationWithJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.findApp(id); a != nil {
		out := f.withJob(*a)
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListApplications(ctx context.Context, p query.Params) (*query.Result[model.ApplicationWithJob], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.ApplicationWithJob{}
	for _, a := range newestFirst(f.apps) {
		if status, ok := p.Filter["status"]; ok && a.Status != status {
			continue
		}
		if jobID, ok := p.Filter["jobId"]; ok && a.JobID != jobID {
			continue
		}
		if p.Search != "" && !containsFold(a.FirstName, p.Search) && !containsFold(a.LastName, p.Search) && !containsFold(a.Email, p.Search) {
			continue
		}
		matched = append(matched, f.withJob(a))
	}
	return pageOf(matched, p), nil
}

func (f *fakeStore) ApplicationExists(ctx context.Context, email, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range f.apps {
		if a.Email == email && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateApplication(ctx context.Context, id string, patch bson.M) (*model.ApplicationWithJob, error) {
	f.mu.Lock()
	a := f.findApp(id)
	if a == nil {
		f.mu.Unlock()
		return nil, store.ErrNotFound
	}
	if v, ok := patch["firstName"].(string); ok {
		a.FirstName = v
	}
	if v, ok := patch["lastName"].(string); ok {
		a.LastName = v
	}
	if v, ok := patch["phone"].(string); ok {
		a.Phone = v
	}
	if v, ok := patch["address"].(string); ok {
		a.Address = v
	}
	if v, ok := patch["linkedinUrl"].(string); ok {
		a.LinkedinURL = v
	}
	if v, ok := patch["coverLetter"].(string); ok {
		a.CoverLetter = v
	}
	a.UpdatedAt = time.Now().UTC()
	f.mu.Unlock()
	return f.GetApplication(ctx, id)
}

func (f *fakeStore) UpdateApplicationStatus(ctx context.Context, id, status string) (*model.ApplicationWithJob, error) {
	f.mu.Lock()
	a := f.findApp(id)
	if a == nil {
		f.mu.Unlock()
		return nil, store.ErrNotFound
	}
	a.Status = status
	if status != model.ApplicationStatusPending {
		now := time.Now().UTC()
		a.ReviewedAt = &now
	} else {
		a.ReviewedAt = nil
	}
	a.UpdatedAt = time.Now().UTC()
	f.mu.Unlock()
	return f.GetApplication(ctx, id)
}

func (f *fakeStore) DeleteApplication(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.apps {
		if a.ID == id {
			f.apps = append(f.apps[:i], f.apps[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ApplicationStats(ctx context.Context, jobID string) (*model.ApplicationStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.ApplicationStats{}
	for _, a := range f.apps {
		if jobID != "" && a.JobID != jobID {
			continue
		}
		switch a.Status {
		case model.ApplicationStatusPending:
			stats.Pending++
		case model.ApplicationStatusReviewing:
			stats.Reviewing++
		case model.ApplicationStatusAccepted:
			stats.Accepted++
		case model.ApplicationStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (f *fakeStore) ApplicationsGroupedByJob(ctx context.Context) ([]model.JobApplicationGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byJob := map[string]*model.JobApplicationGroup{}
	order := []string{}
	for _, a := range newestFirst(f.apps) {
		g, ok := byJob[a.JobID]
		if !ok {
			g = &model.JobApplicationGroup{JobID: a.JobID}
			if j := f.findJob(a.JobID); j != nil {
				cp := *j
				g.JobDetails = &cp
			}
			byJob[a.JobID] = g
			order = append(order, a.JobID)
		}
		g.Applications = append(g.Applications, a)
		g.Statistics.Total++
		switch a.Status {
		case model.ApplicationStatusPending:
			g.Statistics.Pending++
		case model.ApplicationStatusReviewing:
			g.Statistics.Reviewing++
		case model.ApplicationStatusAccepted:
			g.Statistics.Accepted++
		case model.ApplicationStatusRejected:
			g.Statistics.Rejected++
		}
	}
	out := []model.JobApplicationGroup{}
	for _, id := range order {
		out = append(out, *byJob[id])
	}
	return out, nil
}

// --- users ---

func (f *fakeStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range f.users {
		if existing.Email == email {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.Email = email
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CountUsers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeStore) ListUsers(ctx context.Context, p query.Params) (*query.Result[model.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.User{}
	for _, u := range newestFirst(f.users) {
		if p.Search != "" && !containsFold(u.Name, p.Search) && !containsFold(u.Email, p.Search) {
			continue
		}
		matched = append(matched, u)
	}
	return pageOf(matched, p), nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, id string, patch bson.M) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() != id {
			continue
		}
		if v, ok := patch["name"].(string); ok {
			u.Name = v
		}
		if v, ok := patch["email"].(string); ok {
			u.Email = v
		}
		if v, ok := patch["phone"].(string); ok {
			u.Phone = v
		}
		if v, ok := patch["company"].(string); ok {
			u.Company = v
		}
		u.UpdatedAt = time.Now().UTC()
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID.Hex() == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

var _ Store = (*fakeStore)(nil)
