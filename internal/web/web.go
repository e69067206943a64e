package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Section is one entry of the dashboard outline.
type Section struct {
	ID    string
	Title string
}

var outline = []Section{
	{ID: "trend", Title: "Trend Chart"},
	{ID: "breakdown", Title: "Breakdown by Job Title / Employer"},
	{ID: "geo", Title: "Geographical Analysis"},
	{ID: "correlation", Title: "Correlation Analysis"},
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GET /
func (h *Handler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "h1b.html", gin.H{
		"Title":   "H1B Visa Analysis Dashboard",
		"Outline": outline,
	})
}

// GET /tutorial
func (h *Handler) Tutorial(c *gin.Context) {
	c.HTML(http.StatusOK, "tutorial.html", gin.H{
		"Title": "Getting Started with Interactive Dashboards",
	})
}
