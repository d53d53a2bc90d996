package api

import (
	"net/http"
	"strings"

	"github.com/cccbbbaaaa/culture-china/internal/admin"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/gin-gonic/gin"
)

func (h *Handler) alumniForm(c *gin.Context) (admin.AlumniInput, error) {
	cohort, err := formInt(c, "cohort", 0)
	if err != nil {
		return admin.AlumniInput{}, errors.ValidationError{Field: "cohort", Value: c.PostForm("cohort"), Message: "期数需为数字 / Cohort must be >= 1"}
	}
	photo, photoName, err := readFormFile(c, "photo", h.cfg.Imports.MaxUploadBytes)
	if err != nil {
		return admin.AlumniInput{}, err
	}
	return admin.AlumniInput{
		Name:        c.PostForm("name"),
		Cohort:      cohort,
		Email:       c.PostForm("email"),
		Gender:      c.PostForm("gender"),
		Major:       c.PostForm("major"),
		City:        c.PostForm("city"),
		Industry:    c.PostForm("industry"),
		Occupation:  c.PostForm("occupation"),
		WebsiteURL:  c.PostForm("website_url"),
		BioZh:       c.PostForm("bio_zh"),
		BioEn:       c.PostForm("bio_en"),
		AllowBio:    formBool(c, "allow_bio"),
		AllowPhoto:  formBool(c, "allow_photo"),
		IsArchived:  formBool(c, "is_archived"),
		Educations:  formLines(c, "educations"),
		Experiences: formLines(c, "experiences"),
		Photo:       photo,
		PhotoName:   photoName,
	}, nil
}

func (h *Handler) ListAlumniAdmin(c *gin.Context) {
	profiles, err := h.AlumniAdmin.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": profiles})
}

func (h *Handler) GetAlumniAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.AlumniAdmin.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) CreateAlumni(c *gin.Context) {
	in, err := h.alumniForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	profile, err := h.AlumniAdmin.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": profile.ID})
}

func (h *Handler) UpdateAlumni(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, err := h.alumniForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.AlumniAdmin.Update(c.Request.Context(), id, in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ArchiveAlumni(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *Handler) UnarchiveAlumni(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *Handler) setArchived(c *gin.Context, archived bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.AlumniAdmin.SetArchived(c.Request.Context(), id, archived); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_archived": archived})
}

func resourceForm(c *gin.Context) admin.ResourceInput {
	return admin.ResourceInput{
		Title:       c.PostForm("title"),
		Type:        c.PostForm("type"),
		Summary:     c.PostForm("summary"),
		URL:         c.PostForm("url"),
		PublishedAt: c.PostForm("published_at"),
		Year:        c.PostForm("year"),
		IsFeatured:  formBool(c, "is_featured"),
		IsPinned:    formBool(c, "is_pinned"),
	}
}

func (h *Handler) ListResourcesAdmin(c *gin.Context) {
	var types []string
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		types = []string{t}
	}
	items, err := h.ResourceAdmin.List(c.Request.Context(), types)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateResource(c *gin.Context) {
	resource, err := h.ResourceAdmin.Create(c.Request.Context(), resourceForm(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": resource.ID})
}

func (h *Handler) UpdateResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ResourceAdmin.Update(c.Request.Context(), id, resourceForm(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ResourceAdmin.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// mediaForm reads the activity media form. is_active defaults to true when
// the field is absent.
func (h *Handler) mediaForm(c *gin.Context) (admin.MediaInput, error) {
	sortOrder, err := formInt(c, "sort_order", 0)
	if err != nil {
		return admin.MediaInput{}, err
	}
	image, imageName, err := readFormFile(c, "image", h.cfg.Imports.MaxSourceImageBytes)
	if err != nil {
		return admin.MediaInput{}, err
	}
	active := true
	if _, present := c.GetPostForm("is_active"); present {
		active = formBool(c, "is_active")
	}
	return admin.MediaInput{
		SlotKey:   c.PostForm("slot_key"),
		Title:     c.PostForm("title"),
		Subtitle:  c.PostForm("subtitle"),
		LinkURL:   c.PostForm("link_url"),
		SortOrder: sortOrder,
		IsActive:  active,
		Image:     image,
		ImageName: imageName,
	}, nil
}

func (h *Handler) ListMediaAdmin(c *gin.Context) {
	items, err := h.MediaAdmin.List(c.Request.Context(), model.Slot(c.Query("slot")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateMedia(c *gin.Context) {
	in, err := h.mediaForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.MediaAdmin.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "batch_id": res.BatchID, "media_id": res.MediaID, "asset_id": res.AssetID})
}

func (h *Handler) UpdateMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, err := h.mediaForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.MediaAdmin.Update(c.Request.Context(), id, in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.MediaAdmin.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
