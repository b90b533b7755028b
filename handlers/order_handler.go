package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"ecofinds_backend/internal/activity"
	"ecofinds_backend/internal/ws"
	"ecofinds_backend/models"
	"ecofinds_backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderHandler struct {
	DB       *gorm.DB
	Hub      *ws.Hub
	Activity activity.Logger
}

func NewOrderHandler(db *gorm.DB, hub *ws.Hub, act activity.Logger) *OrderHandler {
	if act == nil {
		act = activity.Stdout{}
	}
	return &OrderHandler{DB: db, Hub: hub, Activity: act}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cash_on_delivery wallet"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=shipped delivered cancelled"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
}

var errOrderChanged = errors.New("order status changed concurrently")

// checkoutError rejects a checkout with a client-facing message.
type checkoutError struct {
	msg string
}

func (e *checkoutError) Error() string { return e.msg }

func notify(hub *ws.Hub, userID uint, eventType string, data interface{}) {
	if hub != nil {
		hub.Notify(userID, eventType, data)
	}
}

// Checkout - POST /api/orders/checkout
// Turns every cart line into an order in a single transaction.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	var orders []models.Order
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &checkoutError{"Cart is empty"}
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Order("id asc").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return &checkoutError{"Cart is empty"}
		}

		now := time.Now()
		for _, item := range items {
			p := item.Product
			switch {
			case p.ID == 0:
				return &checkoutError{"A product in your cart is no longer available"}
			case p.Status != models.ProductActive:
				return &checkoutError{fmt.Sprintf("%q is no longer available", p.Title)}
			case p.SellerID == userID:
				return &checkoutError{"You cannot buy your own listing"}
			}

			// Conditional decrement guards against concurrent checkouts.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", p.ID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &checkoutError{fmt.Sprintf("Only %d of %q left", p.Stock, p.Title)}
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND stock = 0", p.ID).
				Update("status", models.ProductSold).Error; err != nil {
				return err
			}

			orders = append(orders, models.Order{
				BuyerID:       userID,
				SellerID:      p.SellerID,
				ProductID:     p.ID,
				ProductTitle:  p.Title,
				ProductImage:  p.ImageURL,
				Quantity:      item.Quantity,
				UnitPrice:     p.Price,
				Total:         p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
				Status:        models.OrderProcessing,
				PaymentMethod: req.PaymentMethod,
				OrderedAt:     now,
			})
		}

		if err := tx.Create(&orders).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})

	var coErr *checkoutError
	if errors.As(err, &coErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": coErr.msg})
	}
	if err != nil {
		log.Printf("Checkout failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not complete checkout"})
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
		notify(h.Hub, o.SellerID, "order_created", fiber.Map{"order_id": o.ID, "product_id": o.ProductID})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed",
		"data":    orders,
		"total":   total,
	})
}

func (h *OrderHandler) list(c *fiber.Ctx, column string, relation string) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	query := h.DB.Preload(relation, models.SellerColumns).Where(column+" = ?", userID)
	if status := c.Query("status"); status != "" && status != "all" {
		if !models.IsOrderStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		query = query.Where("status = ?", status)
	}

	orders := []models.Order{}
	if err := query.Order("ordered_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch orders"})
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GetMyOrders - GET /api/orders
func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	return h.list(c, "buyer_id", "Seller")
}

// GetMySales - GET /api/orders/sales
func (h *OrderHandler) GetMySales(c *fiber.Ctx) error {
	return h.list(c, "seller_id", "Buyer")
}

func (h *OrderHandler) load(c *fiber.Ctx, userID uint) (*models.Order, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var order models.Order
	if err := h.DB.Preload("Buyer", models.SellerColumns).Preload("Seller", models.SellerColumns).
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch order"})
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return &order, nil
}

// GetOrder - GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	order, err := h.load(c, userID)
	if order == nil {
		return err
	}
	return c.JSON(fiber.Map{"data": order})
}

// UpdateStatus - PATCH /api/orders/:id/status
// Sellers ship and deliver; either party may cancel while processing.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	order, err := h.load(c, userID)
	if order == nil {
		return err
	}

	next := models.OrderStatus(req.Status)
	if next != models.OrderCancelled && order.SellerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the seller can update shipping"})
	}
	if !order.Status.CanTransitionTo(next) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Cannot change order from %s to %s", order.Status, next),
		})
	}

	prev := order.Status
	now := time.Now()
	order.Status = next
	switch next {
	case models.OrderShipped:
		order.ShippedAt = &now
		if req.TrackingNumber != "" {
			order.TrackingNumber = req.TrackingNumber
		}
	case models.OrderDelivered:
		order.DeliveredAt = &now
	case models.OrderCancelled:
		order.CancelledAt = &now
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// Only moves the order if nobody changed it since it was loaded.
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, prev).Updates(map[string]interface{}{
			"status":          order.Status,
			"tracking_number": order.TrackingNumber,
			"shipped_at":      order.ShippedAt,
			"delivered_at":    order.DeliveredAt,
			"cancelled_at":    order.CancelledAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errOrderChanged
		}
		if next != models.OrderCancelled {
			return nil
		}
		// Put the stock back; a sold-out listing becomes buyable again.
		return tx.Model(&models.Product{}).Where("id = ?", order.ProductID).Updates(map[string]interface{}{
			"stock":  gorm.Expr("stock + ?", order.Quantity),
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.ProductSold, models.ProductActive),
		}).Error
	})
	if errors.Is(err, errOrderChanged) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order was updated by someone else, reload and try again"})
	}
	if err != nil {
		log.Printf("Failed to update order %d: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update order"})
	}

	entry := activity.OrderStatusEntry{
		OrderID:   order.ID,
		ActorID:   userID,
		From:      string(prev),
		To:        string(next),
		Tracking:  order.TrackingNumber,
		CreatedAt: now,
	}
	if err := h.Activity.OrderStatus(c.UserContext(), entry); err != nil {
		log.Printf("Failed to record order history: %v", err)
	}

	event := fiber.Map{"order_id": order.ID, "status": order.Status, "tracking_number": order.TrackingNumber}
	notify(h.Hub, order.BuyerID, "order_status", event)
	notify(h.Hub, order.SellerID, "order_status", event)

	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}
