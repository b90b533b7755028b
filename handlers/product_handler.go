package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"ecofinds_backend/config"
	"ecofinds_backend/internal/activity"
	"ecofinds_backend/internal/catalog"
	"ecofinds_backend/internal/listing"
	"ecofinds_backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Activity activity.Logger
}

func NewProductHandler(db *gorm.DB, cfg *config.Config, act activity.Logger) *ProductHandler {
	if act == nil {
		act = activity.Stdout{}
	}
	return &ProductHandler{DB: db, Cfg: cfg, Activity: act}
}

// ProductRequest is the create/update payload. Price accepts a number or a
// string and is kept raw so that listing.Validate reports bad values.
type ProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	ImageURL    string          `json:"image_url"`
	Images      []string        `json:"images"`
	LocalPickup bool            `json:"local_pickup"`
	Shippable   bool            `json:"shippable"`
	Stock       int             `json:"stock"`
	Location    string          `json:"location"`
}

func (r ProductRequest) form() listing.Form {
	f := listing.Form{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Condition:   r.Condition,
		Images:      r.Images,
		LocalPickup: r.LocalPickup,
		Shippable:   r.Shippable,
		Stock:       r.Stock,
		Location:    r.Location,
	}
	f.Price = priceText(r.Price)
	if len(f.Images) == 0 && r.ImageURL != "" {
		f.Images = []string{r.ImageURL}
	}
	return f
}

func priceText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		return quoted
	}
	return text
}

type StatusRequest struct {
	Status string `json:"status"`
}

type BulkRequest struct {
	Action string `json:"action"` // delete | status
	IDs    []uint `json:"ids"`
	Status string `json:"status"`
}

func sellerStatus(s string) bool {
	return s == models.ProductActive || s == models.ProductInactive
}

func (h *ProductHandler) maxPrice() decimal.Decimal {
	if h.Cfg == nil {
		return decimal.Zero
	}
	return h.Cfg.MaxListingPrice
}

func (h *ProductHandler) record(c *fiber.Ctx, sellerID uint, action, status string, ids ...uint) {
	entry := activity.ListingEntry{
		SellerID:   sellerID,
		Action:     action,
		ProductIDs: ids,
		Status:     status,
		CreatedAt:  time.Now(),
	}
	if err := h.Activity.Listing(c.UserContext(), entry); err != nil {
		log.Printf("Failed to record listing activity: %v", err)
	}
}

// own loads product :id and checks that userID sells it.
func (h *ProductHandler) own(c *fiber.Ctx, userID uint) (*models.Product, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch product"})
	}

	// Check ownership
	if product.SellerID != userID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized"})
	}
	return &product, nil
}

// CreateProduct - POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	valid, errs := listing.Validate(req.form(), h.maxPrice())
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}

	product := models.Product{
		SellerID: userID,
		Status:   models.ProductActive,
	}
	apply(&product, valid)

	if err := h.DB.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create product"})
	}
	h.record(c, userID, "create", product.Status, product.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func apply(p *models.Product, v *listing.Valid) {
	p.Title = v.Title
	p.Description = v.Description
	p.Price = v.Amount
	p.Category = v.Category
	p.Condition = v.Condition
	p.Images = v.Images
	p.ImageURL = v.Images[0]
	p.LocalPickup = v.LocalPickup
	p.Shippable = v.Shippable
	p.Stock = v.Stock
	p.Location = v.Location
}

// GetAllProducts - GET /api/products
func (h *ProductHandler) GetAllProducts(c *fiber.Ctx) error {
	q := catalog.ParseQuery(func(key string) string { return c.Query(key) })

	var total int64
	if err := q.Where(h.DB.Model(&models.Product{})).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch products"})
	}

	products := []models.Product{}
	query := h.DB.Preload("Seller", models.SellerColumns)
	query = q.Paginate(q.Order(q.Where(query)))
	if err := query.Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch products"})
	}

	return c.JSON(fiber.Map{
		"data": products,
		"meta": models.NewPaginationMeta(q.Page, q.Limit, total),
	})
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product models.Product
	if err := h.DB.Preload("Seller", models.SellerColumns).First(&product, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}

	return c.JSON(fiber.Map{"data": product})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	product, err := h.own(c, userID)
	if product == nil {
		return err
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	valid, errs := listing.Validate(req.form(), h.maxPrice())
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}
	apply(product, valid)
	if product.Status == models.ProductSold && product.Stock > 0 {
		product.Status = models.ProductActive
	}

	if err := h.DB.Save(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update product"})
	}
	h.record(c, userID, "update", product.Status, product.ID)

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DeleteProduct - DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	product, err := h.own(c, userID)
	if product == nil {
		return err
	}

	if _, err := h.deleteListings(product.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete product"})
	}
	h.record(c, userID, "delete", "", product.ID)

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// UpdateStatus - PATCH /api/products/:id/status
func (h *ProductHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !sellerStatus(req.Status) {
		return validationFailed(c, map[string]string{"status": "status must be one of [active inactive]"})
	}

	product, err := h.own(c, userID)
	if product == nil {
		return err
	}
	if product.Status == models.ProductSold && product.Stock == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Sold out listings cannot be re-activated"})
	}

	if err := h.DB.Model(product).Update("status", req.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update status"})
	}
	product.Status = req.Status
	h.record(c, userID, "status", req.Status, product.ID)

	return c.JSON(fiber.Map{"message": "Status updated", "data": product})
}

// deleteListings removes the products and every cart line pointing at them
// in one transaction.
func (h *ProductHandler) deleteListings(ids ...uint) (int64, error) {
	var affected int64
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return tx.Where("product_id IN ?", ids).Delete(&models.CartItem{}).Error
	})
	return affected, err
}

// GetMyProducts - GET /api/my-products
func (h *ProductHandler) GetMyProducts(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	query := h.DB.Where("seller_id = ?", userID)
	if status := c.Query("status"); status != "" && status != "all" {
		if !models.IsProductStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		query = query.Where("status = ?", status)
	}

	products := []models.Product{}
	if err := query.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch products"})
	}

	return c.JSON(fiber.Map{"data": products})
}

// Bulk - POST /api/my-products/bulk
// Only listings owned by the caller are touched; other ids are ignored.
func (h *ProductHandler) Bulk(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if len(req.IDs) == 0 {
		return validationFailed(c, map[string]string{"ids": "Select at least one listing"})
	}

	var owned []uint
	if err := h.DB.Model(&models.Product{}).
		Where("seller_id = ? AND id IN ?", userID, req.IDs).
		Pluck("id", &owned).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch products"})
	}
	if len(owned) == 0 {
		return c.JSON(fiber.Map{"message": "No listings changed", "affected": 0})
	}

	var (
		affected int64
		err      error
	)
	switch req.Action {
	case "delete":
		affected, err = h.deleteListings(owned...)
	case "status":
		if !sellerStatus(req.Status) {
			return validationFailed(c, map[string]string{"status": "status must be one of [active inactive]"})
		}
		// Sold-out listings keep their status.
		result := h.DB.Model(&models.Product{}).
			Where("id IN ? AND NOT (status = ? AND stock = 0)", owned, models.ProductSold).
			Update("status", req.Status)
		affected, err = result.RowsAffected, result.Error
	default:
		return validationFailed(c, map[string]string{"action": "action must be one of [delete status]"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Bulk update failed"})
	}

	h.record(c, userID, "bulk_"+req.Action, req.Status, owned...)

	return c.JSON(fiber.Map{"message": "Listings updated", "affected": affected})
}
