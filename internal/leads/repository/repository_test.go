package repository

import (
	"strings"
	"testing"
)

// Every read path must scope by tenant and skip soft-deleted rows. These
// guards catch accidental edits to the shared query fragments.

func TestFindMostRecentQueryIsTenantScoped(t *testing.T) {
	if !strings.Contains(findMostRecentQuery, "tenant_id = $1") {
		t.Error("find most recent query lost its tenant filter")
	}
	if !strings.Contains(findMostRecentQuery, "deleted_at IS NULL") {
		t.Error("find most recent query lost its soft-delete filter")
	}
}

func TestAnalyticsSnapshotQueryIsTenantScoped(t *testing.T) {
	if !strings.Contains(analyticsSnapshotQuery, "l.tenant_id = $1") {
		t.Error("snapshot query lost its tenant filter")
	}
	if !strings.Contains(analyticsSnapshotQuery, "l.deleted_at IS NULL") {
		t.Error("snapshot query lost its soft-delete filter")
	}
	if !strings.Contains(analyticsSnapshotQuery, "LIMIT $3") {
		t.Error("snapshot query lost its row bound")
	}
}

func TestSnapshotWithFilterInjectsBeforeOrderBy(t *testing.T) {
	got := snapshotWithFilter(analyticsSnapshotQuery, "l.brand_id = $4")
	orderIdx := strings.Index(got, "ORDER BY")
	predIdx := strings.Index(got, "l.brand_id = $4")
	if predIdx == -1 || orderIdx == -1 || predIdx > orderIdx {
		t.Fatalf("filter predicate not injected before ORDER BY:\n%s", got)
	}
}

func TestOrderColumnsRejectUnknownInput(t *testing.T) {
	if _, ok := orderColumns["created_at; DROP TABLE leads"]; ok {
		t.Fatal("order column whitelist accepted arbitrary input")
	}
	for name, col := range orderColumns {
		if strings.ContainsAny(col, ";'") {
			t.Errorf("order column %q maps to suspicious SQL %q", name, col)
		}
	}
}
