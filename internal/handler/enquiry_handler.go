package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-marketplace/internal/middleware"
	"listing-marketplace/internal/service"
)

// EnquiryRequestDTO is the JSON payload for contacting an agent.
type EnquiryRequestDTO struct {
	AdID    string `json:"adId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// EnquiryHandler ties buyer interactions (enquiries and the wishlist) to their services.
type EnquiryHandler struct {
	Enquiries *service.EnquiryService
	Wishlist  *service.WishlistService
}

// RegisterRoutes registers, on a signed-in group:
//
//	POST /contact-agent
//	GET  /enquired-ads/:page
//	PUT  /toggle-wishlist/:adId
//	GET  /wishlist/:page
func (h *EnquiryHandler) RegisterRoutes(auth *gin.RouterGroup) {
	auth.POST("/contact-agent", h.ContactAgent)
	auth.GET("/enquired-ads/:page", h.EnquiredAds)
	auth.PUT("/toggle-wishlist/:adId", h.ToggleWishlist)
	auth.GET("/wishlist/:page", h.WishlistAds)
}

// ContactAgent handles POST /api/contact-agent
func (h *EnquiryHandler) ContactAgent(c *gin.Context) {
	var req EnquiryRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adId and message are required"})
		return
	}

	e, err := h.Enquiries.ContactAgent(c.Request.Context(), c.GetString(middleware.UserIDKey), req.AdID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// EnquiredAds handles GET /api/enquired-ads/:page
func (h *EnquiryHandler) EnquiredAds(c *gin.Context) {
	page, err := h.Enquiries.Enquired(c.Request.Context(), c.GetString(middleware.UserIDKey), pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ToggleWishlist handles PUT /api/toggle-wishlist/:adId
func (h *EnquiryHandler) ToggleWishlist(c *gin.Context) {
	adID := c.Param("adId")
	added, err := h.Wishlist.Toggle(c.Request.Context(), c.GetString(middleware.UserIDKey), adID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adId": adID, "wishlisted": added})
}

// WishlistAds handles GET /api/wishlist/:page
func (h *EnquiryHandler) WishlistAds(c *gin.Context) {
	page, err := h.Wishlist.Wishlist(c.Request.Context(), c.GetString(middleware.UserIDKey), pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
