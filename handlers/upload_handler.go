package handlers

import (
	"errors"
	"log"
	"net/url"
	"strconv"

	"ecofinds_backend/internal/media"
	"ecofinds_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UploadHandler relays uploads to the media host
type UploadHandler struct {
	DB    *gorm.DB
	Relay *media.Relay
}

func NewUploadHandler(db *gorm.DB, relay *media.Relay) *UploadHandler {
	return &UploadHandler{DB: db, Relay: relay}
}

type OptimizeURLRequest struct {
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Crop     string `json:"crop"`
	Quality  string `json:"quality"`
	Format   string `json:"format"`
}

// fail maps relay errors to responses.
func fail(c *fiber.Ctx, err error) error {
	var upstream *media.UpstreamError
	switch {
	case media.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, media.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, media.ErrNotDeleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &upstream):
		log.Printf("Media host error (%s): %v", upstream.Op, upstream.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to " + upstream.Op,
			"details": upstream.Err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// uploadUser resolves the caller, and rejects the request when no media host is configured.
func (h *UploadHandler) uploadUser(c *fiber.Ctx) (uint, string, bool) {
	if h.Relay == nil {
		c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Media uploads are not configured"})
		return 0, "", false
	}
	userID, ok := currentUser(c)
	if !ok {
		invalidSession(c)
		return 0, "", false
	}
	return userID, strconv.FormatUint(uint64(userID), 10), true
}

// UploadImage - POST /upload/image
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	_, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image file is required"})
	}

	asset, err := h.Relay.UploadImage(c.UserContext(), uid, c.FormValue("folder"), file)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(asset)
}

// UploadImages - POST /upload/images
func (h *UploadHandler) UploadImages(c *fiber.Ctx) error {
	_, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least one image file is required"})
	}

	folder := ""
	if v := form.Value["folder"]; len(v) > 0 {
		folder = v[0]
	}

	assets, err := h.Relay.UploadImages(c.UserContext(), uid, folder, form.File["images"])
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"images": assets, "count": len(assets)})
}

// UploadAvatar - POST /upload/avatar
func (h *UploadHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Avatar file is required"})
	}

	asset, err := h.Relay.UploadAvatar(c.UserContext(), uid, file)
	if err != nil {
		return fail(c, err)
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", asset.URL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save avatar"})
	}
	return c.JSON(asset)
}

// UploadDocument - POST /upload/document
func (h *UploadHandler) UploadDocument(c *fiber.Ctx) error {
	userID, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Document file is required"})
	}

	docType := c.FormValue("document_type", "other")
	asset, err := h.Relay.UploadDocument(c.UserContext(), uid, docType, file)
	if err != nil {
		return fail(c, err)
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"verification_status":       models.VerificationPending,
		"verification_document_url": asset.URL,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save document"})
	}

	return c.JSON(fiber.Map{
		"url":                 asset.URL,
		"public_id":           asset.PublicID,
		"format":              asset.Format,
		"bytes":               asset.Bytes,
		"document_type":       docType,
		"verification_status": models.VerificationPending,
	})
}

// DeleteImage - DELETE /upload/image/:publicId
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	_, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	publicID, err := url.PathUnescape(c.Params("publicId"))
	if err != nil || publicID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid public ID"})
	}

	result, err := h.Relay.Destroy(c.UserContext(), uid, publicID)
	if errors.Is(err, media.ErrNotDeleted) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     "Failed to delete image: " + result,
			"result":    result,
			"public_id": publicID,
		})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image deleted", "result": result, "public_id": publicID})
}

type SignatureRequest struct {
	Folder string `json:"folder" form:"folder"`
}

// Signature - POST /upload/signature
// folder may come in a JSON or form body, or as a query parameter.
func (h *UploadHandler) Signature(c *fiber.Ctx) error {
	_, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	var req SignatureRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
		}
	}
	if req.Folder == "" {
		req.Folder = c.Query("folder")
	}

	signed, err := h.Relay.Signature(uid, req.Folder)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(signed)
}

// MyFiles - GET /upload/my-files
func (h *UploadHandler) MyFiles(c *fiber.Ctx) error {
	_, uid, ok := h.uploadUser(c)
	if !ok {
		return nil
	}

	assets, err := h.Relay.ListFiles(c.UserContext(), uid, c.Query("folder"), c.QueryInt("max_results", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"files": assets, "count": len(assets)})
}

// OptimizeURL - POST /upload/optimize-url
func (h *UploadHandler) OptimizeURL(c *fiber.Ctx) error {
	if h.Relay == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Media uploads are not configured"})
	}

	var req OptimizeURLRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	optimized, err := h.Relay.OptimizeURL(req.PublicID, media.Transform{
		Width:   req.Width,
		Height:  req.Height,
		Crop:    req.Crop,
		Quality: req.Quality,
		Format:  req.Format,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"url": optimized, "public_id": req.PublicID})
}
