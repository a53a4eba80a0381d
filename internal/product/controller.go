package product

import (
	"errors"
	"net/http"

	"product_api/internal/binding"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	service ProductServiceInterface
}

func NewProductController(service ProductServiceInterface) *ProductController {
	return &ProductController{
		service: service,
	}
}

// RegisterRoutes mounts /products. Reads are public; mutations go through
// the auth gate first.
func (pc *ProductController) RegisterRoutes(r gin.IRouter, authGate gin.HandlerFunc) {
	products := r.Group("/products")
	{
		products.GET("", pc.ListProducts)
		products.GET("/:id", pc.GetProduct)

		products.POST("", authGate, pc.CreateProduct)
		products.PUT("/:id", authGate, pc.UpdateProduct)
		products.DELETE("/:id", authGate, pc.DeleteProduct)
	}
}

func (pc *ProductController) ListProducts(c *gin.Context) {
	plan := PlanListing(c.Query("page"), c.Query("limit"))

	page, err := pc.service.ListProducts(c.Request.Context(), plan)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	p, err := pc.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		pc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	in, ok := pc.bindInput(c)
	if !ok {
		return
	}

	p, err := pc.service.CreateProduct(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	in, ok := pc.bindInput(c)
	if !ok {
		return
	}

	p, err := pc.service.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if err := pc.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		pc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// bindInput writes the 400 response itself when the body fails validation.
func (pc *ProductController) bindInput(c *gin.Context) (Input, bool) {
	raw, err := binding.JSONObject(c)
	if err != nil {
		_ = c.Error(err)
		return Input{}, false
	}

	in, fieldErrs := ParseInput(raw)
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return Input{}, false
	}
	return in, true
}

func (pc *ProductController) handleError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	_ = c.Error(err)
}
