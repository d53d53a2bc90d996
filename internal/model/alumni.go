package model

import "time"

type AlumniProfile struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	Name            string             `json:"name" gorm:"type:varchar(255);not null"`
	Cohort          *int               `json:"cohort,omitempty" gorm:"index"`
	Gender          string             `json:"gender" gorm:"type:varchar(32)"`
	Major           string             `json:"major" gorm:"type:varchar(255)"`
	Email           string             `json:"email" gorm:"type:varchar(191);not null;uniqueIndex:alumni_email_submission_idx,priority:1"`
	City            string             `json:"city" gorm:"type:varchar(255)"`
	Industry        string             `json:"industry" gorm:"type:varchar(255)"`
	Occupation      string             `json:"occupation" gorm:"type:varchar(255)"`
	BioZh           string             `json:"bio_zh" gorm:"type:text"`
	BioEn           string             `json:"bio_en" gorm:"type:text"`
	AllowBio        bool               `json:"allow_bio" gorm:"default:false;not null"`
	AllowPhoto      bool               `json:"allow_photo" gorm:"default:false;not null"`
	WebsiteURL      string             `json:"website_url,omitempty" gorm:"type:varchar(1024)"`
	PhotoAssetID    *int64             `json:"photo_asset_id,omitempty" gorm:"index"`
	PhotoAsset      *MediaAsset        `json:"-" gorm:"foreignKey:PhotoAssetID"`
	SubmissionEmail string             `json:"submission_email" gorm:"type:varchar(255)"`
	SubmissionTs    *time.Time         `json:"submission_ts,omitempty" gorm:"uniqueIndex:alumni_email_submission_idx,priority:2"`
	BatchID         *int64             `json:"batch_id,omitempty" gorm:"index"`
	Batch           *UploadBatch       `json:"-" gorm:"foreignKey:BatchID"`
	IsArchived      bool               `json:"is_archived" gorm:"default:false;not null;index"`
	Educations      []AlumniEducation  `json:"educations,omitempty" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Experiences     []AlumniExperience `json:"experiences,omitempty" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (AlumniProfile) TableName() string { return "alumni_profiles" }

type AlumniEducation struct {
	ID          int64  `json:"-" gorm:"primaryKey"`
	ProfileID   int64  `json:"-" gorm:"not null;index"`
	Order       int    `json:"order" gorm:"column:item_order;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}

func (AlumniEducation) TableName() string { return "alumni_educations" }

type AlumniExperience struct {
	ID          int64  `json:"-" gorm:"primaryKey"`
	ProfileID   int64  `json:"-" gorm:"not null;index"`
	Order       int    `json:"order" gorm:"column:item_order;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}

func (AlumniExperience) TableName() string { return "alumni_experiences" }

// AlumniRecord is the canonical shape of one spreadsheet row or manual form after mapping.
// Pointer fields are nil when the source cell was absent or unparseable.
type AlumniRecord struct {
	Row             int
	Name            string
	Gender          string
	Cohort          *int
	Major           string
	Email           string
	City            string
	Industry        string
	Occupation      string
	BioZh           string
	BioEn           string
	AllowBio        string
	AllowPhoto      string
	WebsiteURL      string
	PhotoFilename   string
	SubmissionEmail string
	SubmissionTs    *time.Time
	Educations      []string
	Experiences     []string
}

// AlumniCard is the public projection used by the alumni showcase.
type AlumniCard struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Cohort     *int    `json:"cohort,omitempty"`
	Major      string  `json:"major"`
	BioZh      string  `json:"bio_zh"`
	WebsiteURL string  `json:"website_url,omitempty"`
	PhotoID    *int64  `json:"photo_id,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}
