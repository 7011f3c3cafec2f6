package data

import (
	"testing"
	"time"

	"github.com/aldersonarchive/archive-backend/internal/access/biz"
)

func TestToViewsMapping(t *testing.T) {
	now := time.Now()
	itemID := int64(42)
	title := "Meeting minutes 1952"
	username := "alice"
	email := "alice@example.com"

	rows := []accessEventRow{
		{
			AccessID:     7,
			AccessDate:   now,
			AccessType:   "download",
			AccessorName: "alice",
			IPAddress:    "10.0.0.1",
			ItemID:       &itemID,
			ItemTitle:    &title,
			Username:     &username,
			Email:        &email,
		},
		{
			// item and user since deleted: enrichment fields stay nil
			AccessID:     6,
			AccessDate:   now.Add(-time.Hour),
			AccessType:   "view",
			AccessorName: "bob",
		},
	}

	views := toViews(rows)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}

	if views[0].AccessType != biz.AccessTypeDownload {
		t.Errorf("expected download, got %s", views[0].AccessType)
	}
	if views[0].ItemTitle == nil || *views[0].ItemTitle != title {
		t.Error("item title not mapped")
	}
	if views[0].Username == nil || *views[0].Username != username {
		t.Error("username not mapped")
	}

	if views[1].ItemTitle != nil || views[1].Username != nil || views[1].Email != nil {
		t.Error("missing related records must map to nil, not zero values")
	}
	if views[1].AccessorName != "bob" {
		t.Error("accessor snapshot must survive user deletion")
	}
}
