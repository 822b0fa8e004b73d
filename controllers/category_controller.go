// File: /controllers/category_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afisha-api/services"
	"afisha-api/utils"
)

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	category, err := cc.categories.Create(req.Name)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "catId")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	category, err := cc.categories.Update(categoryID, req.Name)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "catId")
	if !ok {
		return
	}

	if err := cc.categories.Delete(categoryID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (cc *CategoryController) GetCategories(c *gin.Context) {
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	categories, err := cc.categories.GetAll(from, size)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "catId")
	if !ok {
		return
	}

	category, err := cc.categories.Get(categoryID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}
