// File: /controllers/compilation_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afisha-api/services"
	"afisha-api/utils"
)

type CompilationController struct {
	compilations *services.CompilationService
}

func NewCompilationController(compilations *services.CompilationService) *CompilationController {
	return &CompilationController{compilations: compilations}
}

type NewCompilationRequest struct {
	Title  string `json:"title" binding:"required,min=1,max=50"`
	Pinned bool   `json:"pinned"`
	Events []uint `json:"events"`
}

type UpdateCompilationRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=50"`
	Pinned *bool   `json:"pinned"`
	Events *[]uint `json:"events"`
}

func (cc *CompilationController) CreateCompilation(c *gin.Context) {
	var req NewCompilationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	compilation, err := cc.compilations.Create(req.Title, req.Pinned, req.Events)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, compilation)
}

func (cc *CompilationController) UpdateCompilation(c *gin.Context) {
	compilationID, ok := parseIDParam(c, "compId")
	if !ok {
		return
	}

	var req UpdateCompilationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	compilation, err := cc.compilations.Update(compilationID, services.UpdateCompilationInput{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	})
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilation)
}

func (cc *CompilationController) DeleteCompilation(c *gin.Context) {
	compilationID, ok := parseIDParam(c, "compId")
	if !ok {
		return
	}

	if err := cc.compilations.Delete(compilationID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (cc *CompilationController) GetCompilations(c *gin.Context) {
	pinned, ok := parseBoolQuery(c, "pinned")
	if !ok {
		return
	}
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	compilations, err := cc.compilations.GetAll(pinned, from, size)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilations)
}

func (cc *CompilationController) GetCompilation(c *gin.Context) {
	compilationID, ok := parseIDParam(c, "compId")
	if !ok {
		return
	}

	compilation, err := cc.compilations.Get(compilationID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, compilation)
}
