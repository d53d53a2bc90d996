package excel

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
)

// Mapper converts header-keyed rows into canonical records. It never fails;
// unparseable values come back empty or nil.
type Mapper struct {
	loc *time.Location
}

func NewMapper(loc *time.Location) *Mapper {
	if loc == nil {
		loc = time.UTC
	}
	return &Mapper{loc: loc}
}

func (m *Mapper) MapAlumni(row Row) model.AlumniRecord {
	record := model.AlumniRecord{
		Row:             row.Number,
		Name:            row.Get(HeaderName),
		Gender:          row.Get(HeaderGender),
		Cohort:          ParseCohort(row.Get(HeaderCohort)),
		Major:           row.Get(HeaderMajor),
		Email:           row.Get(HeaderEmail),
		City:            row.Get(HeaderCity),
		Industry:        row.Get(HeaderIndustry),
		Occupation:      row.Get(HeaderOccupation),
		BioZh:           row.Get(HeaderBioZh),
		BioEn:           row.Get(HeaderBioEn),
		AllowBio:        row.Get(HeaderAllowBio),
		AllowPhoto:      row.Get(HeaderAllowPhoto),
		PhotoFilename:   PhotoFilename(row.Get(HeaderPhoto)),
		SubmissionEmail: row.Get(HeaderSubmissionEmail),
		SubmissionTs:    ParseSubmissionTime(row.Get(HeaderSubmissionTime), m.loc),
		Educations:      nonEmpty(row, EducationHeaders[:]),
		Experiences:     nonEmpty(row, ExperienceHeaders[:]),
	}

	if HasConsent(row.Get(HeaderWebsiteConsent)) {
		record.WebsiteURL = row.Get(HeaderWebsite)
	}

	return record
}

var leadingIntPattern = regexp.MustCompile(`^\s*[+-]?\d+`)

func (m *Mapper) MapResource(row Row) model.ResourceRecord {
	record := model.ResourceRecord{
		Row:         row.Number,
		Title:       row.Get(HeaderResourceTitle),
		Type:        row.Get(HeaderResourceType),
		Summary:     row.Get(HeaderResourceSummary),
		URL:         row.Get(HeaderResourceURL),
		PublishedAt: ParseDate(row.Get(HeaderResourcePublished), time.UTC),
	}
	if record.Type == "" {
		record.Type = model.DefaultResourceType
	}

	if match := leadingIntPattern.FindString(row.Get(HeaderResourceYear)); match != "" {
		if year, err := strconv.Atoi(strings.TrimSpace(match)); err == nil && year != 0 {
			record.Year = &year
		}
	}
	if record.Year == nil && record.PublishedAt != nil {
		year := record.PublishedAt.Year()
		record.Year = &year
	}

	return record
}

// PhotoFilename strips any directory prefix and lower-cases the declared file name.
func PhotoFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if idx := strings.LastIndex(raw, "/"); idx >= 0 {
		raw = raw[idx+1:]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func nonEmpty(row Row, headers []string) []string {
	var values []string
	for _, h := range headers {
		if v := row.Get(h); v != "" {
			values = append(values, v)
		}
	}
	return values
}
