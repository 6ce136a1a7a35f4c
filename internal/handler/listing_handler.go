package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"listing-marketplace/internal/middleware"
	"listing-marketplace/internal/model"
	"listing-marketplace/internal/service"
)

// ListingHandler serves search, feeds and the listing lifecycle.
type ListingHandler struct {
	Search   *service.SearchService
	Listings *service.ListingService
}

// RegisterRoutes registers the public routes on rg and the signed-in routes on auth.
func (h *ListingHandler) RegisterRoutes(rg, auth, admin *gin.RouterGroup) {
	rg.POST("/search-ads", h.SearchAds)
	rg.GET("/ads/:id/related", h.Related)
	rg.GET("/ad/:slug", h.Read)
	rg.GET("/ads-for-sell/:page", h.byAction(model.Sell))
	rg.GET("/ads-for-rent/:page", h.byAction(model.Rent))

	auth.POST("/create-ad", h.Create)
	auth.PUT("/update-ad/:slug", h.Update)
	auth.DELETE("/delete-ad/:slug", h.Delete)
	auth.GET("/user-ads/:page", h.UserAds)
	auth.PUT("/update-ad-status/:slug", h.UpdateStatus)

	admin.PUT("/toggle-published/:adId", h.TogglePublished)
}

// SearchRequest is the body of POST /api/search-ads.
type SearchRequest struct {
	Address      string      `json:"address"`
	Action       string      `json:"action"`
	PropertyType string      `json:"propertyType"`
	Bedrooms     looseString `json:"bedrooms"`
	Bathrooms    looseString `json:"bathrooms"`
	Price        looseString `json:"price"`
	Page         int         `json:"page"`
}

// SearchAds handles POST /api/search-ads
func (h *ListingHandler) SearchAds(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	page, err := h.Search.Search(c.Request.Context(), model.SearchFilter{
		Address:      req.Address,
		Action:       req.Action,
		PropertyType: req.PropertyType,
		Bedrooms:     string(req.Bedrooms),
		Bathrooms:    string(req.Bathrooms),
		Price:        string(req.Price),
		Page:         req.Page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Related handles GET /api/ads/:id/related
func (h *ListingHandler) Related(c *gin.Context) {
	related, err := h.Search.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, related)
}

// Read handles GET /api/ad/:slug and returns the listing with its nearest related listings.
func (h *ListingHandler) Read(c *gin.Context) {
	ctx := c.Request.Context()

	ad, err := h.Listings.Read(ctx, c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	related, err := h.Search.RelatedTo(ctx, ad)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ad": ad, "related": related})
}

func (h *ListingHandler) byAction(action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := h.Search.ByAction(c.Request.Context(), action, pageParam(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ListingRequest is the body of create-ad and update-ad.
type ListingRequest struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Address        string      `json:"address"`
	Photos         []string    `json:"photos"`
	PropertyType   string      `json:"propertyType"`
	Action         string      `json:"action"`
	Price          looseString `json:"price"`
	Bedrooms       looseString `json:"bedrooms"`
	Bathrooms      looseString `json:"bathrooms"`
	Carpark        looseString `json:"carpark"`
	Landsize       looseString `json:"landsize"`
	LandsizeType   string      `json:"landsizeType"`
	InspectionTime string      `json:"inspectionTime"`
}

func (r ListingRequest) input() (service.ListingInput, error) {
	in := service.ListingInput{
		Title:          strings.TrimSpace(r.Title),
		Description:    r.Description,
		Address:        r.Address,
		Photos:         r.Photos,
		PropertyType:   model.PropertyType(r.PropertyType),
		Action:         model.Action(r.Action),
		LandsizeType:   r.LandsizeType,
		InspectionTime: r.InspectionTime,
	}

	var err error
	if in.Price, err = parseInt64(r.Price, "price"); err != nil {
		return in, err
	}
	if in.Bedrooms, err = parseInt(r.Bedrooms, "bedrooms"); err != nil {
		return in, err
	}
	if in.Bathrooms, err = parseInt(r.Bathrooms, "bathrooms"); err != nil {
		return in, err
	}
	if in.Carpark, err = parseInt(r.Carpark, "carpark"); err != nil {
		return in, err
	}
	if r.Landsize != "" {
		if in.Landsize, err = strconv.ParseFloat(string(r.Landsize), 64); err != nil {
			return in, validationf("landsize must be a number")
		}
	}
	return in, nil
}

// Create handles POST /api/create-ad
func (h *ListingHandler) Create(c *gin.Context) {
	in, ok := bindListing(c)
	if !ok {
		return
	}
	ad, err := h.Listings.Create(c.Request.Context(), c.GetString(middleware.UserIDKey), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

// Update handles PUT /api/update-ad/:slug
func (h *ListingHandler) Update(c *gin.Context) {
	in, ok := bindListing(c)
	if !ok {
		return
	}
	ad, err := h.Listings.Update(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("slug"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

// Delete handles DELETE /api/delete-ad/:slug
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.Listings.Delete(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("slug")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UserAds handles GET /api/user-ads/:page
func (h *ListingHandler) UserAds(c *gin.Context) {
	page, err := h.Search.ByUser(c.Request.Context(), c.GetString(middleware.UserIDKey), pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/update-ad-status/:slug
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	err := h.Listings.SetStatus(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("slug"), model.Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TogglePublished handles PUT /api/toggle-published/:adId
func (h *ListingHandler) TogglePublished(c *gin.Context) {
	ad, err := h.Listings.TogglePublished(c.Request.Context(), c.Param("adId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func bindListing(c *gin.Context) (service.ListingInput, bool) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return service.ListingInput{}, false
	}
	in, err := req.input()
	if err != nil {
		writeError(c, err)
		return service.ListingInput{}, false
	}
	return in, true
}

func parseInt(v looseString, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, validationf(field + " must be a whole number")
	}
	return n, nil
}

func parseInt64(v looseString, field string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, validationf(field + " must be a number")
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, validationf(field + " is out of range")
	}
	return int64(f), nil
}
