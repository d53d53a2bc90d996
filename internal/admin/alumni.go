package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

// AlumniInput is the manual alumni form. Photo is optional; when present it
// replaces the stored portrait.
type AlumniInput struct {
	Name        string
	Cohort      int
	Email       string
	Gender      string
	Major       string
	City        string
	Industry    string
	Occupation  string
	WebsiteURL  string
	BioZh       string
	BioEn       string
	AllowBio    bool
	AllowPhoto  bool
	IsArchived  bool
	Educations  []string
	Experiences []string
	Photo       []byte
	PhotoName   string
}

func (in AlumniInput) validate() error {
	return firstError(
		required("name", in.Name, "姓名必填 / Name is required"),
		cohortAtLeastOne(in.Cohort),
		checkEmail("email", in.Email, "邮箱格式错误 / Invalid email"),
		checkMaxLen("gender", in.Gender, 20),
		checkMaxLen("major", in.Major, 120),
		checkMaxLen("city", in.City, 120),
		checkMaxLen("industry", in.Industry, 120),
		checkMaxLen("occupation", in.Occupation, 180),
		checkURL("website_url", in.WebsiteURL, "个人链接需为合法 URL / Website must be valid URL", false),
	)
}

func cohortAtLeastOne(cohort int) error {
	if cohort < 1 {
		return invalid("cohort", cohort, "期数需为数字 / Cohort must be >= 1")
	}
	return nil
}

func (in AlumniInput) profile() *model.AlumniProfile {
	cohort := in.Cohort
	email := strings.TrimSpace(in.Email)
	return &model.AlumniProfile{
		Name:            strings.TrimSpace(in.Name),
		Cohort:          &cohort,
		Email:           email,
		Gender:          strings.TrimSpace(in.Gender),
		Major:           strings.TrimSpace(in.Major),
		City:            strings.TrimSpace(in.City),
		Industry:        strings.TrimSpace(in.Industry),
		Occupation:      strings.TrimSpace(in.Occupation),
		WebsiteURL:      strings.TrimSpace(in.WebsiteURL),
		BioZh:           strings.TrimSpace(in.BioZh),
		BioEn:           strings.TrimSpace(in.BioEn),
		AllowBio:        in.AllowBio,
		AllowPhoto:      in.AllowPhoto,
		IsArchived:      in.IsArchived,
		SubmissionEmail: email,
	}
}

// AlumniService backs the alumni admin screens. Every call needs the alumni scope.
type AlumniService struct {
	cfg    *config.Config
	repo   db.Repository
	images *media.Writer
	cache  *cache.Cache
	now    func() time.Time
	log    zerolog.Logger
}

func NewAlumniService(cfg *config.Config, repo db.Repository, images *media.Writer, listings *cache.Cache) *AlumniService {
	return &AlumniService{
		cfg:    cfg,
		repo:   repo,
		images: images,
		cache:  listings,
		now:    time.Now,
		log:    logger.Get().With().Str("component", "admin_alumni").Logger(),
	}
}

func (s *AlumniService) List(ctx context.Context) ([]model.AlumniProfile, error) {
	if _, err := auth.Require(ctx, auth.ScopeAlumni); err != nil {
		return nil, err
	}
	return s.repo.ListAlumniProfiles(ctx)
}

func (s *AlumniService) Get(ctx context.Context, profileID int64) (*model.AlumniProfile, error) {
	if _, err := auth.Require(ctx, auth.ScopeAlumni); err != nil {
		return nil, err
	}
	return s.repo.GetAlumniProfile(ctx, profileID)
}

// Create inserts a hand-entered profile stamped with the current time as its
// submission time.
func (s *AlumniService) Create(ctx context.Context, in AlumniInput) (*model.AlumniProfile, error) {
	principal, err := auth.Require(ctx, auth.ScopeAlumni)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	profile := in.profile()
	if len(in.Photo) > 0 {
		assetID, batchID, err := s.storePhoto(ctx, principal, in)
		if err != nil {
			return nil, err
		}
		profile.PhotoAssetID = &assetID
		profile.BatchID = &batchID
	}
	ts := s.now()
	profile.SubmissionTs = &ts

	if _, err := s.repo.CreateAlumniProfile(ctx, profile, cleanList(in.Educations), cleanList(in.Experiences)); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.cache.Invalidate(ctx, cache.PrefixAlumni)
	s.log.Info().Int64("profile_id", profile.ID).Str("by", principal.Username).Msg("Alumni profile created")
	return profile, nil
}

// Update rewrites the profile fields and both lists in one transaction. The
// photo only changes when a new one is uploaded.
func (s *AlumniService) Update(ctx context.Context, profileID int64, in AlumniInput) error {
	principal, err := auth.Require(ctx, auth.ScopeAlumni)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}

	profile := in.profile()
	if len(in.Photo) > 0 {
		assetID, batchID, err := s.storePhoto(ctx, principal, in)
		if err != nil {
			return err
		}
		profile.PhotoAssetID = &assetID
		profile.BatchID = &batchID
	}

	if err := s.repo.UpdateAlumniProfile(ctx, profileID, profile, cleanList(in.Educations), cleanList(in.Experiences)); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.PrefixAlumni)
	s.log.Info().Int64("profile_id", profileID).Str("by", principal.Username).Msg("Alumni profile updated")
	return nil
}

func (s *AlumniService) SetArchived(ctx context.Context, profileID int64, archived bool) error {
	if _, err := auth.Require(ctx, auth.ScopeAlumni); err != nil {
		return err
	}
	if err := s.repo.SetAlumniArchived(ctx, profileID, archived); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PrefixAlumni)
	return nil
}

// storePhoto normalizes a portrait inside its own manual-entry batch.
func (s *AlumniService) storePhoto(ctx context.Context, principal auth.Principal, in AlumniInput) (int64, int64, error) {
	limit := s.cfg.Imports.MaxProcessedImgBytes
	if limit > 0 && int64(len(in.Photo)) > limit {
		return 0, 0, fmt.Errorf("%w: 照片超过 %d 字节限制 / photo exceeds %d bytes", errors.ErrFileTooLarge, limit, limit)
	}

	batch, err := openSingleBatch(ctx, s.repo, model.BatchKindAlumniManual, in.PhotoName, principal.Username, s.log)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create batch: %w", err)
	}

	asset, err := s.images.Store(ctx, media.StoreRequest{
		Data:     in.Photo,
		FileName: in.PhotoName,
		Usage:    model.UsageAlumniPhoto,
		BatchID:  batch.id,
		Shape:    media.Portrait,
		MaxBytes: limit,
	})
	batch.finish(ctx, err)
	if err != nil {
		return 0, 0, err
	}
	return asset.AssetID, batch.id, nil
}
