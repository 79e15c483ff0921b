package activities

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"outings/models"
	"outings/store"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("activity not found")
	ErrForbidden     = errors.New("forbidden: not the activity owner")
	ErrInvalidStatus = errors.New("invalid status")
)

var (
	slugStripRE    = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRE    = regexp.MustCompile(`\s+`)
	slugCollapseRE = regexp.MustCompile(`-+`)
)

// Slugify derives the URL slug from an activity name. The slug is a pure
// function of the name and is recomputed whenever the name changes.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRE.ReplaceAllString(slug, "")
	slug = slugSpaceRE.ReplaceAllString(slug, "-")
	slug = slugCollapseRE.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// QueryOptions filters and sorts the activity list. Zero values mean "no
// filtering" and the query behaves like GetAll.
type QueryOptions struct {
	Q     string
	Slug  string
	Sort  string
	Order string // "asc" (default) or "desc"
}

// Service owns Activity entities: field validation, slug derivation and
// ownership-gated mutation.
type Service struct {
	store *store.Store[models.Activity]
	log   *zap.Logger
	now   func() time.Time
}

func NewService(st *store.Store[models.Activity], log *zap.Logger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

func (s *Service) GetAll() []models.Activity {
	return s.store.GetAll()
}

func (s *Service) GetByID(id string) (models.Activity, bool) {
	return s.store.GetByID(id)
}

// Create allocates the next id, derives the slug and persists the activity.
// The route layer validates first; an invalid payload here still fails with
// ErrValidation.
func (s *Service) Create(req models.CreateActivityRequest, ownerID string) (models.Activity, error) {
	if errs := s.ValidateCreate(req); len(errs) > 0 {
		return models.Activity{}, ErrValidation
	}

	duration := 60
	if req.Duration != nil {
		duration = int(*req.Duration)
	}
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	activity := models.Activity{
		ID:              fmt.Sprintf("activity-%d", s.store.NextID()),
		Name:            req.Name,
		Slug:            Slugify(req.Name),
		Price:           float64(req.Price),
		Date:            req.Date,
		Duration:        duration,
		Location:        req.Location,
		MinParticipants: int(req.MinParticipants),
		MaxParticipants: int(req.MaxParticipants),
		Status:          status,
		UserID:          ownerID,
		CreatedAt:       s.now().UTC().Format(time.RFC3339),
	}

	s.store.Create(activity)
	s.log.Info("activity created",
		zap.String("id", activity.ID), zap.String("slug", activity.Slug),
		zap.String("owner", ownerID))
	return activity, nil
}

// Update applies the present fields of the patch onto the stored activity.
// Only the owner may update; the patch is re-validated against the merged
// view. The slug is re-derived only when the name changes.
func (s *Service) Update(id string, patch models.UpdateActivityRequest, callerID string) (models.Activity, error) {
	existing, ok := s.store.GetByID(id)
	if !ok {
		return models.Activity{}, ErrNotFound
	}
	if existing.UserID != callerID {
		return models.Activity{}, ErrForbidden
	}
	if errs := s.ValidateUpdate(patch, existing); len(errs) > 0 {
		return models.Activity{}, ErrValidation
	}

	updated, _ := s.store.Update(id, func(a *models.Activity) {
		if patch.Name != nil {
			a.Name = *patch.Name
			a.Slug = Slugify(*patch.Name)
		}
		if patch.Price != nil {
			a.Price = float64(*patch.Price)
		}
		if patch.Date != nil {
			a.Date = *patch.Date
		}
		if patch.Duration != nil {
			a.Duration = int(*patch.Duration)
		}
		if patch.Location != nil {
			a.Location = *patch.Location
		}
		if patch.MinParticipants != nil {
			a.MinParticipants = int(*patch.MinParticipants)
		}
		if patch.MaxParticipants != nil {
			a.MaxParticipants = int(*patch.MaxParticipants)
		}
		if patch.Status != nil {
			a.Status = *patch.Status
		}
		a.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	})

	s.log.Info("activity updated", zap.String("id", id))
	return updated, nil
}

// Delete removes an activity. Returns false without error when the id was
// never present; a non-owner always gets ErrForbidden.
func (s *Service) Delete(id, callerID string) (bool, error) {
	existing, ok := s.store.GetByID(id)
	if !ok {
		return false, nil
	}
	if existing.UserID != callerID {
		return false, ErrForbidden
	}
	return s.store.Delete(id), nil
}

// TransitionStatus moves the activity to newStatus. Membership in the status
// enum is the only gate: no transition table is enforced, any status is
// reachable from any other.
func (s *Service) TransitionStatus(id, newStatus, callerID string) (models.Activity, error) {
	existing, ok := s.store.GetByID(id)
	if !ok {
		return models.Activity{}, ErrNotFound
	}
	if existing.UserID != callerID {
		return models.Activity{}, ErrForbidden
	}
	if !models.IsActivityStatus(newStatus) {
		return models.Activity{}, ErrInvalidStatus
	}

	updated, _ := s.store.Update(id, func(a *models.Activity) {
		a.Status = newStatus
		a.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	})

	s.log.Info("activity status changed",
		zap.String("id", id), zap.String("from", existing.Status), zap.String("to", newStatus))
	return updated, nil
}

// Query filters by case-insensitive substring of q against name, location
// and slug (OR), optionally by exact slug, then sorts. With no options set
// it is equivalent to GetAll.
func (s *Service) Query(opts QueryOptions) []models.Activity {
	out := s.store.GetAll()

	if opts.Q != "" {
		q := strings.ToLower(opts.Q)
		filtered := out[:0:0]
		for _, a := range out {
			if strings.Contains(strings.ToLower(a.Name), q) ||
				strings.Contains(strings.ToLower(a.Location), q) ||
				strings.Contains(strings.ToLower(a.Slug), q) {
				filtered = append(filtered, a)
			}
		}
		out = filtered
	}

	if opts.Slug != "" {
		filtered := out[:0:0]
		for _, a := range out {
			if a.Slug == opts.Slug {
				filtered = append(filtered, a)
			}
		}
		out = filtered
	}

	if opts.Sort != "" {
		desc := strings.EqualFold(opts.Order, "desc")
		sort.SliceStable(out, func(i, j int) bool {
			less := activityFieldLess(out[i], out[j], opts.Sort)
			if desc {
				return activityFieldLess(out[j], out[i], opts.Sort)
			}
			return less
		})
	}

	return out
}

func activityFieldLess(a, b models.Activity, field string) bool {
	switch field {
	case "price":
		return a.Price < b.Price
	case "duration":
		return a.Duration < b.Duration
	case "minParticipants":
		return a.MinParticipants < b.MinParticipants
	case "maxParticipants":
		return a.MaxParticipants < b.MaxParticipants
	case "name":
		return a.Name < b.Name
	case "slug":
		return a.Slug < b.Slug
	case "date":
		return a.Date < b.Date
	case "location":
		return a.Location < b.Location
	case "status":
		return a.Status < b.Status
	case "userId":
		return a.UserID < b.UserID
	case "createdAt":
		return a.CreatedAt < b.CreatedAt
	default:
		return a.ID < b.ID
	}
}

// ValidateCreate returns the complete list of field errors for a create
// payload.
func (s *Service) ValidateCreate(req models.CreateActivityRequest) []models.ValidationError {
	var errs []models.ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, models.ValidationError{
			Field: "name", Message: "Name is required and must be a non-empty string"})
	}
	if req.Price <= 0 {
		errs = append(errs, models.ValidationError{
			Field: "price", Message: "Price is required and must be greater than 0"})
	}
	errs = append(errs, s.validateDate(req.Date)...)
	if req.Duration != nil && *req.Duration <= 0 {
		errs = append(errs, models.ValidationError{
			Field: "duration", Message: "Duration must be greater than 0 minutes"})
	}
	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, models.ValidationError{
			Field: "location", Message: "Location is required and must be a non-empty string"})
	}
	min, max := int(req.MinParticipants), int(req.MaxParticipants)
	errs = append(errs, validateParticipants(min, max)...)
	if req.Status != "" && !models.IsActivityStatus(req.Status) {
		errs = append(errs, statusError())
	}

	return errs
}

// ValidateUpdate treats every field as optional but cross-validates min/max
// using the stored value for any field absent from the patch.
func (s *Service) ValidateUpdate(patch models.UpdateActivityRequest, existing models.Activity) []models.ValidationError {
	var errs []models.ValidationError

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		errs = append(errs, models.ValidationError{
			Field: "name", Message: "Name must be a non-empty string"})
	}
	if patch.Price != nil && *patch.Price <= 0 {
		errs = append(errs, models.ValidationError{
			Field: "price", Message: "Price must be greater than 0"})
	}
	if patch.Date != nil {
		errs = append(errs, s.validateDate(*patch.Date)...)
	}
	if patch.Duration != nil && *patch.Duration <= 0 {
		errs = append(errs, models.ValidationError{
			Field: "duration", Message: "Duration must be greater than 0 minutes"})
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		errs = append(errs, models.ValidationError{
			Field: "location", Message: "Location must be a non-empty string"})
	}

	min, max := existing.MinParticipants, existing.MaxParticipants
	if patch.MinParticipants != nil {
		min = int(*patch.MinParticipants)
	}
	if patch.MaxParticipants != nil {
		max = int(*patch.MaxParticipants)
	}
	errs = append(errs, validateParticipants(min, max)...)

	if patch.Status != nil && !models.IsActivityStatus(*patch.Status) {
		errs = append(errs, statusError())
	}

	return errs
}

func (s *Service) validateDate(date string) []models.ValidationError {
	parsed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return []models.ValidationError{{
			Field: "date", Message: "Date is required and must be a valid ISO date string"}}
	}
	if !parsed.After(s.now()) {
		return []models.ValidationError{{
			Field: "date", Message: "Date must be in the future"}}
	}
	return nil
}

func validateParticipants(min, max int) []models.ValidationError {
	var errs []models.ValidationError
	if min < 1 {
		errs = append(errs, models.ValidationError{
			Field: "minParticipants", Message: "Minimum participants must be at least 1"})
	}
	if max < 1 {
		errs = append(errs, models.ValidationError{
			Field: "maxParticipants", Message: "Maximum participants must be at least 1"})
	}
	if min >= 1 && max >= 1 && min > max {
		errs = append(errs, models.ValidationError{
			Field: "minParticipants", Message: "Minimum participants cannot exceed maximum participants"})
	}
	return errs
}

func statusError() models.ValidationError {
	return models.ValidationError{
		Field:   "status",
		Message: "Status must be one of: " + strings.Join(models.ActivityStatuses, ", "),
	}
}
