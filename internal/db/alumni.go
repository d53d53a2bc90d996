package db

import (
	"context"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var profileUpsertColumns = []string{
	"name", "cohort", "gender", "major", "city", "industry", "occupation",
	"bio_zh", "bio_en", "allow_bio", "allow_photo", "website_url",
	"submission_email", "batch_id", "updated_at",
}

// UpsertAlumniProfile inserts or updates the profile identified by
// (email, submission_ts) and replaces its education and experience lists,
// all in one transaction. The stored photo is only overwritten when the
// incoming profile carries a new asset.
func (r *repository) UpsertAlumniProfile(ctx context.Context, profile *model.AlumniProfile, educations, experiences []string) (int64, error) {
	if profile.Email == "" || profile.SubmissionTs == nil {
		return 0, errors.ErrMissingIdentity
	}

	row := *profile
	row.ID = 0
	row.Educations = nil
	row.Experiences = nil
	// submission_ts is DATETIME(3); keep the key at the precision the column stores.
	ts := profile.SubmissionTs.UTC().Truncate(time.Millisecond)
	row.SubmissionTs = &ts

	columns := profileUpsertColumns
	if row.PhotoAssetID != nil {
		columns = append(append([]string{}, profileUpsertColumns...), "photo_asset_id")
	}

	var profileID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}, {Name: "submission_ts"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		// The driver may not report the id of an updated row, so read it back by key.
		var existing model.AlumniProfile
		if err := tx.Select("id").
			Where("email = ? AND submission_ts = ?", row.Email, ts).
			Take(&existing).Error; err != nil {
			return err
		}
		profileID = existing.ID

		return replaceChildren(tx, profileID, educations, experiences)
	})
	if err != nil {
		return 0, err
	}

	profile.ID = profileID
	return profileID, nil
}

func (r *repository) CreateAlumniProfile(ctx context.Context, profile *model.AlumniProfile, educations, experiences []string) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile.Educations = nil
		profile.Experiences = nil
		if profile.SubmissionTs != nil {
			ts := profile.SubmissionTs.UTC().Truncate(time.Millisecond)
			profile.SubmissionTs = &ts
		}
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return err
		}
		return replaceChildren(tx, profile.ID, educations, experiences)
	})
	if err != nil {
		return 0, err
	}
	return profile.ID, nil
}

// UpdateAlumniProfile rewrites the editable fields of a profile. Photo and
// batch references are kept unless the update supplies new ones.
func (r *repository) UpdateAlumniProfile(ctx context.Context, profileID int64, profile *model.AlumniProfile, educations, experiences []string) error {
	updates := map[string]interface{}{
		"name":             profile.Name,
		"cohort":           profile.Cohort,
		"email":            profile.Email,
		"gender":           profile.Gender,
		"major":            profile.Major,
		"city":             profile.City,
		"industry":         profile.Industry,
		"occupation":       profile.Occupation,
		"bio_zh":           profile.BioZh,
		"bio_en":           profile.BioEn,
		"allow_bio":        profile.AllowBio,
		"allow_photo":      profile.AllowPhoto,
		"is_archived":      profile.IsArchived,
		"website_url":      profile.WebsiteURL,
		"submission_email": profile.SubmissionEmail,
		"updated_at":       time.Now(),
	}
	if profile.PhotoAssetID != nil {
		updates["photo_asset_id"] = *profile.PhotoAssetID
	}
	if profile.BatchID != nil {
		updates["batch_id"] = *profile.BatchID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.AlumniProfile{}).Where("id = ?", profileID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrNotFound
		}
		return replaceChildren(tx, profileID, educations, experiences)
	})
}

func (r *repository) SetAlumniArchived(ctx context.Context, profileID int64, archived bool) error {
	result := r.db.WithContext(ctx).Model(&model.AlumniProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{"is_archived": archived, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *repository) GetAlumniProfile(ctx context.Context, profileID int64) (*model.AlumniProfile, error) {
	var profile model.AlumniProfile
	err := r.db.WithContext(ctx).
		Preload("Educations", func(db *gorm.DB) *gorm.DB { return db.Order("item_order") }).
		Preload("Experiences", func(db *gorm.DB) *gorm.DB { return db.Order("item_order") }).
		First(&profile, profileID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// ListAlumniProfiles returns every profile for the admin table, newest cohort first.
func (r *repository) ListAlumniProfiles(ctx context.Context) ([]model.AlumniProfile, error) {
	var profiles []model.AlumniProfile
	err := r.db.WithContext(ctx).
		Order("cohort DESC").
		Order("submission_ts DESC").
		Find(&profiles).Error
	return profiles, err
}

// ListAlumniByCohort returns the public profiles of one cohort, photo holders first.
func (r *repository) ListAlumniByCohort(ctx context.Context, cohort, take int) ([]model.AlumniProfile, error) {
	var profiles []model.AlumniProfile
	q := r.db.WithContext(ctx).
		Where("is_archived = ? AND cohort = ?", false, cohort).
		Order("CASE WHEN photo_asset_id IS NULL THEN 1 ELSE 0 END").
		Order("submission_ts DESC")
	if take > 0 {
		q = q.Limit(take)
	}
	err := q.Find(&profiles).Error
	return profiles, err
}

func (r *repository) ListCohorts(ctx context.Context) ([]int, error) {
	var cohorts []int
	err := r.db.WithContext(ctx).Model(&model.AlumniProfile{}).
		Where("is_archived = ? AND cohort IS NOT NULL", false).
		Distinct().
		Order("cohort DESC").
		Pluck("cohort", &cohorts).Error
	return cohorts, err
}

func replaceChildren(tx *gorm.DB, profileID int64, educations, experiences []string) error {
	if err := tx.Where("profile_id = ?", profileID).Delete(&model.AlumniEducation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("profile_id = ?", profileID).Delete(&model.AlumniExperience{}).Error; err != nil {
		return err
	}

	if len(educations) > 0 {
		rows := make([]model.AlumniEducation, len(educations))
		for i, d := range educations {
			rows[i] = model.AlumniEducation{ProfileID: profileID, Order: i + 1, Description: d}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(experiences) > 0 {
		rows := make([]model.AlumniExperience, len(experiences))
		for i, d := range experiences {
			rows[i] = model.AlumniExperience{ProfileID: profileID, Order: i + 1, Description: d}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}
