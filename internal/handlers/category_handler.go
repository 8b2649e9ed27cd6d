package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger/internal/models"
	"ledger/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Type     string `json:"type" binding:"required,category_type"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Type     *string `json:"type" binding:"omitempty,category_type"`
	ParentID *uint   `json:"parent_id"`
}

// CategoryResponse wraps a single category.
type CategoryResponse struct {
	Category CategoryRecord `json:"category"`
}

// CategoryListResponse wraps a list of categories.
type CategoryListResponse struct {
	Categories []CategoryRecord `json:"categories"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a new transaction category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} CategoryResponse "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, req.Name, models.CategoryType(req.Type), req.ParentID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CategoryResponse{Category: newCategoryRecord(category)})
}

// GetUserCategories handles listing the caller's categories
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoryListResponse "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetUserCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categories, err := h.categoryService.GetUserCategories(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	records := make([]CategoryRecord, len(categories))
	for i := range categories {
		records[i] = newCategoryRecord(&categories[i])
	}
	c.JSON(http.StatusOK, CategoryListResponse{Categories: records})
}

// GetCategoryByID handles fetching one category
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} CategoryResponse "Category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), userID, categoryID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Category: newCategoryRecord(category)})
}

// UpdateCategory handles updating a category
// @Summary     Update a category
// @Description Rename, retype or move a category. A category cannot become its own ancestor.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to change"
// @Success     200 {object} CategoryResponse "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input or cycle"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	update := services.CategoryUpdate{Name: req.Name, ParentID: req.ParentID}
	if req.Type != nil {
		t := models.CategoryType(*req.Type)
		update.Type = &t
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), userID, categoryID, update)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Category: newCategoryRecord(category)})
}

// DeleteCategory handles deleting a category
// @Summary     Delete a category
// @Description Delete a category that has no child categories and no transactions.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use or has children"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}
