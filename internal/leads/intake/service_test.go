package intake

import (
	"context"
	"testing"
	"time"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads   []domain.Lead
	creates int
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	lead := leadFromParams(params)
	f.leads = append(f.leads, lead)
	f.creates++
	return lead, nil
}

func (f *fakeStore) CreateIfNoRecent(ctx context.Context, params repository.CreateLeadParams, window time.Duration) (domain.Lead, bool, error) {
	for _, l := range f.leads {
		if l.TenantID == params.TenantID && l.Email == params.Email && l.BrandID == params.BrandID &&
			l.DeletedAt == nil && time.Since(l.CreatedAt) < window {
			return domain.Lead{}, false, nil
		}
	}
	lead, err := f.Create(ctx, params)
	return lead, true, err
}

func (f *fakeStore) FindMostRecent(_ context.Context, tenantID uuid.UUID, email string, brandID uuid.UUID) (domain.Lead, error) {
	var found *domain.Lead
	for i := range f.leads {
		l := &f.leads[i]
		if l.TenantID == tenantID && l.Email == email && l.BrandID == brandID && l.DeletedAt == nil {
			if found == nil || l.CreatedAt.After(found.CreatedAt) {
				found = l
			}
		}
	}
	if found == nil {
		return domain.Lead{}, repository.ErrNotFound
	}
	return *found, nil
}

func (f *fakeStore) GetByID(context.Context, uuid.UUID, uuid.UUID) (domain.Lead, error) {
	return domain.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) Update(context.Context, uuid.UUID, uuid.UUID, repository.UpdateLeadParams) (domain.Lead, error) {
	return domain.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) SoftDelete(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrNotFound
}

func (f *fakeStore) Query(context.Context, uuid.UUID, repository.QueryFilters, string, repository.Pagination) ([]domain.Lead, int, error) {
	return nil, 0, nil
}

func leadFromParams(p repository.CreateLeadParams) domain.Lead {
	now := time.Now()
	return domain.Lead{
		ID:                 uuid.New(),
		TenantID:           p.TenantID,
		BrandID:            p.BrandID,
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		Source:             p.Source,
		Document:           p.Document,
		DocumentType:       p.DocumentType,
		CapitalAvailable:   p.CapitalAvailable,
		Score:              p.Score,
		Category:           p.Category,
		CommercialStatusID: p.CommercialStatusID,
		Message:            p.Message,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

type fakeStatuses struct {
	status domain.CommercialStatus
}

func (f fakeStatuses) StatusBySlug(_ context.Context, tenantID uuid.UUID, slug string) (domain.CommercialStatus, error) {
	s := f.status
	s.TenantID = tenantID
	s.Slug = slug
	return s, nil
}

func newTestService(store *fakeStore) (*Service, *events.InMemoryBus) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	statuses := fakeStatuses{status: domain.CommercialStatus{ID: uuid.New()}}
	return NewService(store, statuses, bus, log), bus
}

func payload(email string) map[string]any {
	return map[string]any{
		"nome":     "Carlos Pereira",
		"email":    email,
		"telefone": "11987654321",
		"capital":  "550000",
	}
}

func TestSubmitCreatesScoredLead(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)

	res, err := svc.Submit(context.Background(), Submission{
		TenantID: uuid.New(),
		BrandID:  uuid.New(),
		Payload:  payload("carlos@example.com"),
		Channel:  "landing-page",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Duplicate {
		t.Fatal("first submission reported as duplicate")
	}
	if res.Lead.Score != 95 || res.Lead.Category != domain.CategoryHot {
		t.Errorf("lead classified (%d, %q), want (95, hot)", res.Lead.Score, res.Lead.Category)
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestSubmitSuppressesRecentDuplicate(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	tenantID, brandID := uuid.New(), uuid.New()

	first, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: brandID,
		Payload: payload("dup@example.com"), Channel: "form",
	})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// One hour old: well inside the window.
	store.leads[0].CreatedAt = time.Now().Add(-1 * time.Hour)

	second, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: brandID,
		Payload: payload("dup@example.com"), Channel: "form",
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("submission inside the window not reported as duplicate")
	}
	if second.Lead.ID != first.Lead.ID {
		t.Error("duplicate result does not point at the existing lead")
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestSubmitAllowsLeadOlderThanWindow(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	tenantID, brandID := uuid.New(), uuid.New()

	if _, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: brandID,
		Payload: payload("later@example.com"), Channel: "form",
	}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	store.leads[0].CreatedAt = time.Now().Add(-25 * time.Hour)

	res, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: brandID,
		Payload: payload("later@example.com"), Channel: "form",
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if res.Duplicate {
		t.Fatal("submission outside the window reported as duplicate")
	}
	if store.creates != 2 {
		t.Errorf("creates = %d, want 2", store.creates)
	}
}

func TestSubmitDedupScopedByBrandAndTenant(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	tenantID := uuid.New()

	if _, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: uuid.New(),
		Payload: payload("scoped@example.com"), Channel: "form",
	}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// Same email, different brand: not a duplicate.
	res, err := svc.Submit(context.Background(), Submission{
		TenantID: tenantID, BrandID: uuid.New(),
		Payload: payload("scoped@example.com"), Channel: "form",
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if res.Duplicate {
		t.Fatal("same email under a different brand reported as duplicate")
	}
}

func TestSubmitValidationRejectsBeforePersisting(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing email", func(p map[string]any) { delete(p, "email") }, "email"},
		{"malformed email", func(p map[string]any) { p["email"] = "not-an-email" }, "email"},
		{"short name", func(p map[string]any) { p["nome"] = "Jo" }, "name"},
		{"short phone", func(p map[string]any) { p["telefone"] = "12345" }, "phone"},
		{"bad document", func(p map[string]any) { p["documento"] = "123456" }, "document"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc, _ := newTestService(store)

			p := payload("valid@example.com")
			tc.mutate(p)

			_, err := svc.Submit(context.Background(), Submission{
				TenantID: uuid.New(), BrandID: uuid.New(),
				Payload: p, Channel: "form",
			})
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			appErr := err.(*apperr.Error)
			details, _ := appErr.Details.(map[string]string)
			if details["field"] != tc.field {
				t.Errorf("error names field %q, want %q", details["field"], tc.field)
			}
			if store.creates != 0 {
				t.Errorf("creates = %d, want 0 after validation failure", store.creates)
			}
		})
	}
}

func TestSubmitMissingCapitalGetsBaseScore(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)

	p := payload("base@example.com")
	delete(p, "capital")

	res, err := svc.Submit(context.Background(), Submission{
		TenantID: uuid.New(), BrandID: uuid.New(),
		Payload: p, Channel: "form",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Lead.Score != 50 || res.Lead.Category != domain.CategoryCold {
		t.Errorf("lead without capital classified (%d, %q), want (50, cold)", res.Lead.Score, res.Lead.Category)
	}
}
