package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/hanu-sports/storefront/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
	users    *service.UserService
}

func NewProductHandler(products *service.ProductService, users *service.UserService) *ProductHandler {
	return &ProductHandler{products: products, users: users}
}

type ProductPageDTO struct {
	Products    []*domain.Product `json:"products"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.ProductFilter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
	}
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("minPrice"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("maxPrice"), 64)
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductPageDTO{
		Products:    page.Products,
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	})
}

// GET /api/v1/products/category/{category}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// POST /api/v1/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if product.Name == "" || product.Price <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product", "name and a positive price are required")
		return
	}
	if product.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_product", "stock cannot be negative")
		return
	}

	if err := h.products.Create(r.Context(), &product); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

type UpdateProductRequestDTO struct {
	Name                 *string            `json:"name"`
	Description          *string            `json:"description"`
	Category             *string            `json:"category"`
	Subcategory          *string            `json:"subcategory"`
	Price                *float64           `json:"price"`
	DiscountPrice        *float64           `json:"discountPrice"`
	Stock                *int               `json:"stock"`
	Images               *[]string          `json:"images"`
	Sizes                *[]string          `json:"sizes"`
	Colors               *[]string          `json:"colors"`
	Features             *[]string          `json:"features"`
	Tags                 *[]string          `json:"tags"`
	Customizable         *bool              `json:"customizable"`
	CustomizationOptions *map[string]string `json:"customizationOptions"`
	Brand                *string            `json:"brand"`
	SKU                  *string            `json:"sku"`
	IsActive             *bool              `json:"isActive"`
}

// PUT /api/v1/admin/products/{product_id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	upd := service.ProductUpdate{
		Name:                 req.Name,
		Description:          req.Description,
		Category:             req.Category,
		Subcategory:          req.Subcategory,
		Price:                req.Price,
		DiscountPrice:        req.DiscountPrice,
		Stock:                req.Stock,
		Images:               req.Images,
		Sizes:                req.Sizes,
		Colors:               req.Colors,
		Features:             req.Features,
		Tags:                 req.Tags,
		Customizable:         req.Customizable,
		CustomizationOptions: req.CustomizationOptions,
		Brand:                req.Brand,
		SKU:                  req.SKU,
		IsActive:             req.IsActive,
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "product_id"), upd)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DELETE /api/v1/admin/products/{product_id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type ReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// POST /api/v1/products/{product_id}/reviews
func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}

	user, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.products.AddReview(r.Context(), chi.URLParam(r, "product_id"), user, req.Rating, req.Comment); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "review added"})
}
