package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"math/rand"
	"testing"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/db/dbtest"
	"github.com/cccbbbaaaa/culture-china/internal/excel"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/xuri/excelize/v2"
)

var sheetHeaders = []string{
	excel.HeaderSubmissionTime,
	excel.HeaderName,
	excel.HeaderCohort,
	excel.HeaderEmail,
	excel.HeaderAllowBio,
	excel.HeaderAllowPhoto,
	excel.HeaderPhoto,
	excel.EducationHeaders[0],
	excel.EducationHeaders[1],
}

type sheetRow struct {
	ts, name, cohort, email, bio, photoOK, photo, edu1, edu2 string
}

func consenting(ts, name, email string) sheetRow {
	return sheetRow{ts: ts, name: name, cohort: "第三期", email: email, bio: "愿意", photoOK: "愿意"}
}

func buildSheet(t *testing.T, rows ...sheetRow) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	write := func(line int, values []string) {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow("Sheet1", cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	write(1, sheetHeaders)
	for i, r := range rows {
		write(i+2, []string{r.ts, r.name, r.cohort, r.email, r.bio, r.photoOK, r.photo, r.edu1, r.edu2})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func buildArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func noise(w, h int) image.Image {
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Timezone = "UTC"
	cfg.Imports.MaxUploadBytes = 1 << 30
	cfg.Imports.MaxSourceImageBytes = 8 << 20
	cfg.Imports.MaxProcessedImgBytes = 1 << 20
	cfg.Imports.ErrorPreview = 20
	return cfg
}

func asRoot() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Username: "root", Role: auth.RoleSuperAdmin})
}

func asEditor() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Username: "editor", Role: auth.RoleContentEditor})
}

// spyRepo records batch activity and counts store access.
type spyRepo struct {
	db.Repository
	calls   int
	batches []int64
}

func (s *spyRepo) CreateBatch(ctx context.Context, batch *model.UploadBatch) error {
	s.calls++
	if err := s.Repository.CreateBatch(ctx, batch); err != nil {
		return err
	}
	s.batches = append(s.batches, batch.ID)
	return nil
}

type fakeQueue struct {
	jobs []model.ImportJob
}

func (q *fakeQueue) EnqueueImportJob(ctx context.Context, job model.ImportJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type fixture struct {
	cfg      *config.Config
	repo     *spyRepo
	store    *storage.MemoryStorage
	queue    *fakeQueue
	alumni   *AlumniImporter
	resource *ResourceImporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	repo := &spyRepo{Repository: dbtest.Repository(t)}
	store := storage.NewMemoryStorage()
	q := &fakeQueue{}
	writer := media.NewWriter(store, repo, nil)
	return &fixture{
		cfg:      cfg,
		repo:     repo,
		store:    store,
		queue:    q,
		alumni:   NewAlumniImporter(cfg, repo, store, writer, q, nil),
		resource: NewResourceImporter(cfg, repo, nil),
	}
}

// hookRepo calls hooks around every row write. A hook may cancel the import
// context or panic.
type hookRepo struct {
	db.Repository
	writes      int
	beforeWrite func(n int)
	afterWrite  func(n int)
}

func (h *hookRepo) around(write func() error) error {
	h.writes++
	if h.beforeWrite != nil {
		h.beforeWrite(h.writes)
	}
	err := write()
	if h.afterWrite != nil {
		h.afterWrite(h.writes)
	}
	return err
}

func (h *hookRepo) UpsertAlumniProfile(ctx context.Context, profile *model.AlumniProfile, educations, experiences []string) (int64, error) {
	var id int64
	err := h.around(func() error {
		var err error
		id, err = h.Repository.UpsertAlumniProfile(ctx, profile, educations, experiences)
		return err
	})
	return id, err
}

func (h *hookRepo) UpsertResource(ctx context.Context, resource *model.ExternalResource) error {
	return h.around(func() error {
		return h.Repository.UpsertResource(ctx, resource)
	})
}

func (f *fixture) hooked() (*hookRepo, *AlumniImporter, *ResourceImporter) {
	h := &hookRepo{Repository: f.repo}
	alumni := NewAlumniImporter(f.cfg, h, f.store, media.NewWriter(f.store, h, nil), nil, nil)
	return h, alumni, NewResourceImporter(f.cfg, h, nil)
}
