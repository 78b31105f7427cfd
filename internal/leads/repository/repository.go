package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadcapture_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, tenant_id, brand_id, name, email, phone, city, state, source,
	document, document_type, capital_available, score, category,
	commercial_status_id, loss_reason_id, operator_id, message,
	created_at, updated_at, deleted_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var docType *string
	var category string
	err := row.Scan(
		&lead.ID, &lead.TenantID, &lead.BrandID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.City, &lead.State, &lead.Source,
		&lead.Document, &docType, &lead.CapitalAvailable, &lead.Score, &category,
		&lead.CommercialStatusID, &lead.LossReasonID, &lead.OperatorID, &lead.Message,
		&lead.CreatedAt, &lead.UpdatedAt, &lead.DeletedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Category = domain.Category(category)
	if docType != nil {
		dt := domain.DocumentType(*docType)
		lead.DocumentType = &dt
	}
	return lead, nil
}

// CreateLeadParams carries everything needed to persist a lead. Scores and
// categories are computed by the caller; the repository never derives them.
type CreateLeadParams struct {
	TenantID           uuid.UUID
	BrandID            uuid.UUID
	Name               string
	Email              string
	Phone              string
	City               string
	State              string
	Source             string
	Document           string
	DocumentType       *domain.DocumentType
	CapitalAvailable   int64
	Score              int
	Category           domain.Category
	CommercialStatusID uuid.UUID
	OperatorID         *uuid.UUID
	Message            string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			tenant_id, brand_id, name, email, phone, city, state, source,
			document, document_type, capital_available, score, category,
			commercial_status_id, operator_id, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+leadColumns,
		params.TenantID, params.BrandID, params.Name, params.Email, params.Phone,
		params.City, params.State, params.Source,
		params.Document, docTypeValue(params.DocumentType), params.CapitalAvailable,
		params.Score, string(params.Category),
		params.CommercialStatusID, params.OperatorID, params.Message,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// CreateIfNoRecent inserts the lead only when no non-deleted lead with the
// same (tenant, email, brand) was created within the window. The check and
// the insert run in a single statement so two concurrent identical
// submissions cannot both insert; this is the storage-layer dedup guarantee.
// Returns created=false with the zero Lead when the insert was suppressed.
func (r *Repository) CreateIfNoRecent(ctx context.Context, params CreateLeadParams, window time.Duration) (domain.Lead, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			tenant_id, brand_id, name, email, phone, city, state, source,
			document, document_type, capital_available, score, category,
			commercial_status_id, operator_id, message
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		WHERE NOT EXISTS (
			SELECT 1 FROM leads
			WHERE tenant_id = $1 AND email = $4 AND brand_id = $2
				AND deleted_at IS NULL
				AND created_at > now() - make_interval(secs => $17)
		)
		RETURNING `+leadColumns,
		params.TenantID, params.BrandID, params.Name, params.Email, params.Phone,
		params.City, params.State, params.Source,
		params.Document, docTypeValue(params.DocumentType), params.CapitalAvailable,
		params.Score, string(params.Category),
		params.CommercialStatusID, params.OperatorID, params.Message,
		window.Seconds(),
	)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, false, nil
	}
	if err != nil {
		return domain.Lead{}, false, fmt.Errorf("conditional create lead: %w", err)
	}
	return lead, true, nil
}

// findMostRecentQuery is a named const so tests can assert tenant scoping.
const findMostRecentQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE tenant_id = $1 AND email = $2 AND brand_id = $3 AND deleted_at IS NULL
	ORDER BY created_at DESC
	LIMIT 1`

// FindMostRecent returns the newest non-deleted lead for the dedup triple.
func (r *Repository) FindMostRecent(ctx context.Context, tenantID uuid.UUID, email string, brandID uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, findMostRecentQuery, tenantID, email, brandID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("find most recent lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// UpdateLeadParams carries optional fields for a partial update. Nil means
// leave unchanged.
type UpdateLeadParams struct {
	Name               *string
	Email              *string
	Phone              *string
	City               *string
	State              *string
	CapitalAvailable   *int64
	Score              *int
	Category           *domain.Category
	CommercialStatusID *uuid.UUID
	LossReasonID       *uuid.UUID
	LossReasonIDSet    bool
	OperatorID         *uuid.UUID
	OperatorIDSet      bool
	Message            *string
}

func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	set := []string{"updated_at = now()"}
	args := []any{id, tenantID}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.State != nil {
		add("state", *params.State)
	}
	if params.CapitalAvailable != nil {
		add("capital_available", *params.CapitalAvailable)
	}
	if params.Score != nil {
		add("score", *params.Score)
	}
	if params.Category != nil {
		add("category", string(*params.Category))
	}
	if params.CommercialStatusID != nil {
		add("commercial_status_id", *params.CommercialStatusID)
	}
	if params.LossReasonIDSet {
		add("loss_reason_id", params.LossReasonID)
	}
	if params.OperatorIDSet {
		add("operator_id", params.OperatorID)
	}
	if params.Message != nil {
		add("message", *params.Message)
	}

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING %s`, strings.Join(set, ", "), leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// SoftDelete marks a lead deleted. The row stays for audit; every read path
// filters on deleted_at IS NULL.
func (r *Repository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("soft delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryFilters narrows lead listings. Zero values mean no filter.
type QueryFilters struct {
	BrandID    *uuid.UUID
	OperatorID *uuid.UUID
	StatusSlug string
	Category   string
	Source     string
}

// Pagination bounds a listing query.
type Pagination struct {
	Page    int
	PerPage int
}

const (
	defaultPerPage = 25
	maxPerPage     = 200
)

// orderColumns whitelists sortable columns; anything else falls back to
// created_at so callers cannot inject SQL through orderBy.
var orderColumns = map[string]string{
	"created_at":        "l.created_at",
	"score":             "l.score",
	"capital_available": "l.capital_available",
	"name":              "l.name",
}

// Query lists non-deleted leads for a tenant with filters, ordering, and
// pagination, returning the page and the total match count.
func (r *Repository) Query(ctx context.Context, tenantID uuid.UUID, filters QueryFilters, orderBy string, page Pagination) ([]domain.Lead, int, error) {
	where := []string{"l.tenant_id = $1", "l.deleted_at IS NULL"}
	args := []any{tenantID}

	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filters.BrandID != nil {
		addFilter("l.brand_id = $%d", *filters.BrandID)
	}
	if filters.OperatorID != nil {
		addFilter("l.operator_id = $%d", *filters.OperatorID)
	}
	if filters.StatusSlug != "" {
		addFilter("cs.slug = $%d", filters.StatusSlug)
	}
	if filters.Category != "" {
		addFilter("l.category = $%d", filters.Category)
	}
	if filters.Source != "" {
		addFilter("l.source = $%d", filters.Source)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM leads l
		JOIN commercial_statuses cs ON cs.id = l.commercial_status_id
		WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	order, ok := orderColumns[orderBy]
	if !ok {
		order = orderColumns["created_at"]
	}

	perPage := page.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	pageNum := page.Page
	if pageNum < 1 {
		pageNum = 1
	}
	offset := (pageNum - 1) * perPage

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		JOIN commercial_statuses cs ON cs.id = l.commercial_status_id
		WHERE %s
		ORDER BY %s DESC
		LIMIT %d OFFSET %d`, prefixedLeadColumns(), whereClause, order, perPage, offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0, perPage)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func prefixedLeadColumns() string {
	cols := strings.Split(leadColumns, ",")
	for i, c := range cols {
		cols[i] = "l." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func docTypeValue(dt *domain.DocumentType) *string {
	if dt == nil {
		return nil
	}
	s := string(*dt)
	return &s
}
