package model

import (
	"sort"
	"time"
)

const DefaultResourceType = "未分类"

type ExternalResource struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"type:varchar(512);not null"`
	Type        string       `json:"type" gorm:"type:varchar(128);not null;index"`
	Summary     *string      `json:"summary,omitempty" gorm:"type:text"`
	URL         string       `json:"url" gorm:"type:varchar(700);not null;uniqueIndex:external_resources_url_idx"`
	PublishedAt *time.Time   `json:"published_at,omitempty" gorm:"type:date"`
	Year        *int         `json:"year,omitempty"`
	IsFeatured  bool         `json:"is_featured" gorm:"default:false;not null"`
	IsPinned    bool         `json:"is_pinned" gorm:"default:false;not null"`
	BatchID     *int64       `json:"batch_id,omitempty" gorm:"index"`
	Batch       *UploadBatch `json:"-" gorm:"foreignKey:BatchID"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (ExternalResource) TableName() string { return "external_resources" }

type ResourceSection string

const (
	SectionActivities ResourceSection = "activities"
	SectionCurriculum ResourceSection = "curriculum"
	SectionAdmissions ResourceSection = "admissions"
	SectionStories    ResourceSection = "stories"
)

type ResourceType struct {
	Section ResourceSection
	Label   string
}

// ResourceTypes maps the raw CSV type column to the site section it renders in.
var ResourceTypes = map[string]ResourceType{
	"活动-年度论坛":      {Section: SectionActivities, Label: "年度论坛"},
	"活动-访学交流":      {Section: SectionActivities, Label: "访学交流"},
	"活动-其他活动":      {Section: SectionActivities, Label: "其他活动"},
	"招生-招生活动":      {Section: SectionAdmissions, Label: "招生活动"},
	"课程-课程回顾/新闻场记": {Section: SectionCurriculum, Label: "课程回顾 · Notes"},
	"校友故事/随笔/专栏":   {Section: SectionStories, Label: "校友故事"},
}

// ResourceTypeLabel falls back to the raw type when it is not in the table.
func ResourceTypeLabel(t string) string {
	if cfg, ok := ResourceTypes[t]; ok {
		return cfg.Label
	}
	return t
}

// TypesForSection returns the raw types rendered in section, sorted for stable queries.
func TypesForSection(section ResourceSection) []string {
	var types []string
	for t, cfg := range ResourceTypes {
		if cfg.Section == section {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// ResourceRecord is one mapped CSV row.
type ResourceRecord struct {
	Row         int
	Title       string
	Type        string
	Summary     string
	URL         string
	PublishedAt *time.Time
	Year        *int
}
