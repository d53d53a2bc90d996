package model

import "time"

const (
	UsageAlumniPhoto    = "alumni_photo"
	UsageActivityBanner = "activity_banner"
)

type MediaAsset struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	StoragePath string       `json:"storage_path" gorm:"type:varchar(512);not null"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	FileSize    int64        `json:"file_size" gorm:"column:filesize"`
	Ratio       float64      `json:"ratio"`
	Usage       string       `json:"usage" gorm:"type:varchar(64);not null;index"`
	BatchID     *int64       `json:"batch_id,omitempty" gorm:"index"`
	Batch       *UploadBatch `json:"-" gorm:"foreignKey:BatchID"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (MediaAsset) TableName() string { return "media_assets" }

type Slot string

const (
	SlotHomeHero          Slot = "home_hero"
	SlotActivitiesGallery Slot = "activities_gallery"
)

func (s Slot) Valid() bool {
	return s == SlotHomeHero || s == SlotActivitiesGallery
}

type ActivityMedia struct {
	ID        int64       `json:"id" gorm:"primaryKey"`
	Title     string      `json:"title" gorm:"type:varchar(255);not null"`
	Subtitle  *string     `json:"subtitle,omitempty" gorm:"type:varchar(512)"`
	LinkURL   *string     `json:"link_url,omitempty" gorm:"type:varchar(1024)"`
	MediaID   int64       `json:"media_id" gorm:"not null;index"`
	Media     *MediaAsset `json:"media,omitempty" gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE"`
	SlotKey   Slot        `json:"slot_key" gorm:"type:varchar(32);not null;index"`
	SortOrder int         `json:"sort_order" gorm:"default:0;not null"`
	IsActive  bool        `json:"is_active" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (ActivityMedia) TableName() string { return "activity_media" }
