package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/db/dbtest"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	apperrors "github.com/cccbbbaaaa/culture-china/pkg/errors"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func newProfile(email string, ts time.Time) *model.AlumniProfile {
	return &model.AlumniProfile{
		Name:         "张三",
		Cohort:       intPtr(3),
		Email:        email,
		SubmissionTs: &ts,
		AllowBio:     true,
		AllowPhoto:   true,
	}
}

func TestUpsertAlumniProfileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.FixedZone("CST", 8*3600))

	id1, err := repo.UpsertAlumniProfile(ctx, newProfile("a@example.com", ts), []string{"e1", "e2"}, []string{"x1"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := newProfile("a@example.com", ts.UTC())
	second.Name = "张三丰"
	id2, err := repo.UpsertAlumniProfile(ctx, second, []string{"e3"}, nil)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same profile id, got %d and %d", id1, id2)
	}

	profile, err := repo.GetAlumniProfile(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Name != "张三丰" {
		t.Fatalf("expected updated name, got %q", profile.Name)
	}
	if len(profile.Educations) != 1 || profile.Educations[0].Description != "e3" || profile.Educations[0].Order != 1 {
		t.Fatalf("educations were not replaced exactly: %+v", profile.Educations)
	}
	if len(profile.Experiences) != 0 {
		t.Fatalf("experiences should be cleared, got %+v", profile.Experiences)
	}
}

func TestUpsertKeysOnMillisecondTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)
	ts := time.Date(2024, 3, 5, 14, 30, 0, 123456789, time.UTC)

	id1, err := repo.UpsertAlumniProfile(ctx, newProfile("ms@example.com", ts), nil, nil)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	id2, err := repo.UpsertAlumniProfile(ctx, newProfile("ms@example.com", ts.Add(400*time.Microsecond)), nil, nil)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("timestamps within one millisecond should share a profile, got %d and %d", id1, id2)
	}

	profile, err := repo.GetAlumniProfile(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := time.Date(2024, 3, 5, 14, 30, 0, 123000000, time.UTC)
	if profile.SubmissionTs == nil || !profile.SubmissionTs.Equal(want) {
		t.Fatalf("expected stored timestamp %v, got %v", want, profile.SubmissionTs)
	}
}

func TestUpsertKeepsPhotoWhenNoneSupplied(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	asset := &model.MediaAsset{StoragePath: "alumni_photo/1/1-a.jpg", Usage: model.UsageAlumniPhoto}
	if err := repo.CreateMediaAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	withPhoto := newProfile("p@example.com", ts)
	withPhoto.PhotoAssetID = int64Ptr(asset.ID)
	id, err := repo.UpsertAlumniProfile(ctx, withPhoto, nil, nil)
	if err != nil {
		t.Fatalf("upsert with photo: %v", err)
	}

	if _, err := repo.UpsertAlumniProfile(ctx, newProfile("p@example.com", ts), nil, nil); err != nil {
		t.Fatalf("upsert without photo: %v", err)
	}

	profile, err := repo.GetAlumniProfile(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.PhotoAssetID == nil || *profile.PhotoAssetID != asset.ID {
		t.Fatalf("photo reference was cleared: %v", profile.PhotoAssetID)
	}
}

func TestUpsertRequiresIdentity(t *testing.T) {
	repo := dbtest.Repository(t)
	p := &model.AlumniProfile{Name: "x", Email: "a@example.com"}
	if _, err := repo.UpsertAlumniProfile(context.Background(), p, nil, nil); !errors.Is(err, apperrors.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestAlumniListings(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	asset := &model.MediaAsset{StoragePath: "alumni_photo/1/1-b.jpg", Usage: model.UsageAlumniPhoto}
	if err := repo.CreateMediaAsset(ctx, asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	old := newProfile("old@example.com", base)
	newer := newProfile("new@example.com", base.Add(time.Hour))
	photo := newProfile("photo@example.com", base.Add(-time.Hour))
	photo.PhotoAssetID = int64Ptr(asset.ID)
	archived := newProfile("gone@example.com", base.Add(2*time.Hour))
	other := newProfile("other@example.com", base)
	other.Cohort = intPtr(7)

	var archivedID int64
	for _, p := range []*model.AlumniProfile{old, newer, photo, archived, other} {
		id, err := repo.UpsertAlumniProfile(ctx, p, nil, nil)
		if err != nil {
			t.Fatalf("upsert %s: %v", p.Email, err)
		}
		if p == archived {
			archivedID = id
		}
	}
	if err := repo.SetAlumniArchived(ctx, archivedID, true); err != nil {
		t.Fatalf("archive: %v", err)
	}

	list, err := repo.ListAlumniByCohort(ctx, 3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var emails []string
	for _, p := range list {
		emails = append(emails, p.Email)
	}
	want := []string{"photo@example.com", "new@example.com", "old@example.com"}
	if len(emails) != len(want) {
		t.Fatalf("got %v, want %v", emails, want)
	}
	for i := range want {
		if emails[i] != want[i] {
			t.Fatalf("got %v, want %v", emails, want)
		}
	}

	cohorts, err := repo.ListCohorts(ctx)
	if err != nil {
		t.Fatalf("cohorts: %v", err)
	}
	if len(cohorts) != 2 || cohorts[0] != 7 || cohorts[1] != 3 {
		t.Fatalf("unexpected cohorts %v", cohorts)
	}

	if err := repo.SetAlumniArchived(ctx, 9999, true); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAlumniProfileKeepsPhoto(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)

	p := newProfile("u@example.com", time.Now())
	p.PhotoAssetID = int64Ptr(11)
	id, err := repo.CreateAlumniProfile(ctx, p, []string{"a", "b"}, []string{"c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := newProfile("u2@example.com", time.Now())
	update.Name = "李四"
	if err := repo.UpdateAlumniProfile(ctx, id, update, []string{"z"}, []string{"y", "x"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetAlumniProfile(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "李四" || got.Email != "u2@example.com" {
		t.Fatalf("fields not updated: %+v", got)
	}
	if got.PhotoAssetID == nil || *got.PhotoAssetID != 11 {
		t.Fatalf("photo should be untouched, got %v", got.PhotoAssetID)
	}
	if len(got.Educations) != 1 || len(got.Experiences) != 2 || got.Experiences[1].Description != "x" || got.Experiences[1].Order != 2 {
		t.Fatalf("children not replaced: %+v %+v", got.Educations, got.Experiences)
	}

	if err := repo.UpdateAlumniProfile(ctx, 4242, update, nil, nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)

	batch := &model.UploadBatch{BatchType: model.BatchKindAlumniExcel, SourceFilename: "a.xlsx", SubmittedBy: "admin"}
	if err := repo.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("create: %v", err)
	}
	if batch.Status != model.BatchStatusPending {
		t.Fatalf("expected pending, got %s", batch.Status)
	}

	if err := repo.MarkBatchProcessing(ctx, batch.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	if err := repo.MarkBatchProcessing(ctx, batch.ID); !errors.Is(err, apperrors.ErrInvalidBatchState) {
		t.Fatalf("expected ErrInvalidBatchState on second claim, got %v", err)
	}

	err := repo.FinalizeBatch(ctx, batch.ID, model.BatchResult{
		Status:       model.BatchStatusCompleted,
		TotalRows:    3,
		AcceptedRows: 2,
		Notes:        []string{"第 3 行 / row 3: boom", "第 5 行 / row 5: bad\nphoto"},
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	got, err := repo.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BatchStatusCompleted || got.TotalRows != 3 || got.AcceptedRows != 2 || got.FinishedAt == nil {
		t.Fatalf("unexpected batch %+v", got)
	}
	if got.Notes == nil || *got.Notes != "第 3 行 / row 3: boom\n第 5 行 / row 5: bad photo" {
		t.Fatalf("notes should be stored one per line, got %v", got.Notes)
	}
	if notes := db.DecodeNotes(got); len(notes) != 2 || notes[0] != "第 3 行 / row 3: boom" {
		t.Fatalf("unexpected notes %v", notes)
	}

	if _, err := repo.GetBatch(ctx, 999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResources(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)

	day := func(d int) *time.Time {
		v := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	first := &model.ExternalResource{Title: "旧标题", Type: "活动-年度论坛", URL: "https://example.com/1", PublishedAt: day(1)}
	if err := repo.UpsertResource(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again := &model.ExternalResource{Title: "新标题", Type: "活动-年度论坛", URL: "https://example.com/1", PublishedAt: day(1)}
	if err := repo.UpsertResource(ctx, again); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	second := &model.ExternalResource{Title: "课程", Type: "课程-课程回顾/新闻场记", URL: "https://example.com/2", PublishedAt: day(5)}
	if err := repo.UpsertResource(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	all, err := repo.ListResources(ctx, db.ResourceFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].URL != "https://example.com/2" || all[1].Title != "新标题" {
		t.Fatalf("unexpected list %+v", all)
	}

	activities, err := repo.ListResources(ctx, db.ResourceFilter{Types: model.TypesForSection(model.SectionActivities)})
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 1 || activities[0].URL != "https://example.com/1" {
		t.Fatalf("unexpected filtered list %+v", activities)
	}

	dup := &model.ExternalResource{Title: "dup", Type: model.DefaultResourceType, URL: "https://example.com/2"}
	if err := repo.CreateResource(ctx, dup); !errors.Is(err, apperrors.ErrDuplicateLink) {
		t.Fatalf("expected ErrDuplicateLink on create, got %v", err)
	}
	if err := repo.UpdateResource(ctx, all[1].ID, dup); !errors.Is(err, apperrors.ErrDuplicateLink) {
		t.Fatalf("expected ErrDuplicateLink on update, got %v", err)
	}

	if err := repo.DeleteResource(ctx, all[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteResource(ctx, all[0].ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestActivityMedia(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.Repository(t)

	asset := &model.MediaAsset{StoragePath: "activity_banner/1/1-x.jpg", Usage: model.UsageActivityBanner}
	if err := repo.CreateMediaAsset(ctx, asset); err != nil {
		t.Fatalf("asset: %v", err)
	}

	items := []*model.ActivityMedia{
		{Title: "b", MediaID: asset.ID, SlotKey: model.SlotHomeHero, SortOrder: 2, IsActive: true},
		{Title: "a", MediaID: asset.ID, SlotKey: model.SlotHomeHero, SortOrder: 1, IsActive: true},
		{Title: "hidden", MediaID: asset.ID, SlotKey: model.SlotHomeHero, SortOrder: 0, IsActive: false},
		{Title: "g", MediaID: asset.ID, SlotKey: model.SlotActivitiesGallery, IsActive: true},
	}
	for _, it := range items {
		if err := repo.CreateActivityMedia(ctx, it); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListActivityMedia(ctx, db.ActivityMediaFilter{Slot: model.SlotHomeHero, ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Title != "a" || list[1].Title != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].Media == nil || list[0].Media.StoragePath != asset.StoragePath {
		t.Fatalf("media asset not preloaded")
	}

	update := *items[2]
	update.IsActive = true
	update.MediaID = 0
	if err := repo.UpdateActivityMedia(ctx, items[2].ID, &update); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ = repo.ListActivityMedia(ctx, db.ActivityMediaFilter{Slot: model.SlotHomeHero, ActiveOnly: true})
	if len(list) != 3 || list[0].Title != "hidden" || list[0].MediaID != asset.ID {
		t.Fatalf("unexpected list after update %+v", list)
	}

	if err := repo.DeleteActivityMedia(ctx, items[3].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := repo.ListActivityMedia(ctx, db.ActivityMediaFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 items after delete, got %d", len(all))
	}
}
