// Package job provides HTTP handlers for browsing the job catalog.
package job

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trizen-careers/internal/catalog"
	"trizen-careers/internal/model"
	"trizen-careers/internal/utilities"
)

// JobController serves the static job catalog.
type JobController struct {
	Catalog *catalog.Catalog
}

// NewJobController creates a new instance of JobController backed by cat.
func NewJobController(cat *catalog.Catalog) *JobController {
	return &JobController{
		Catalog: cat,
	}
}

// JobListResponse is the response body of the job listing
type JobListResponse struct {
	Version string              `json:"version"`
	Count   int                 `json:"count"`
	Jobs    []model.JobResponse `json:"jobs"`
}

// FacetsResponse lists the filter values available in the catalog
type FacetsResponse struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// ListJobsHandler returns the jobs matching the search term, category and location filters.
// @Summary List jobs
// @Tags Job
// @Produce json
// @Param search query string false "Case insensitive match on title or description"
// @Param category query string false "Exact category, or all"
// @Param location query string false "Exact location, or all"
// @Success 200 {object} JobListResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Router /jobs [get]
func (jc *JobController) ListJobsHandler(c *gin.Context) {
	q := catalog.Query{}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid query: %s", err.Error()),
		})
		return
	}

	jobs := jc.Catalog.Search(q)
	applied := appliedLookup(c)

	resp := JobListResponse{
		Version: jc.Catalog.Version(),
		Count:   len(jobs),
		Jobs:    make([]model.JobResponse, 0, len(jobs)),
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, j.ToJobResponse(applied(j.ID)))
	}

	c.JSON(http.StatusOK, resp)
}

// FacetsHandler returns the distinct categories and locations of the catalog.
// @Summary Job filter values
// @Tags Job
// @Produce json
// @Success 200 {object} FacetsResponse
// @Router /jobs/facets [get]
func (jc *JobController) FacetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, FacetsResponse{
		Categories: jc.Catalog.Categories(),
		Locations:  jc.Catalog.Locations(),
	})
}

// GetJobHandler returns one job by id or slug.
// @Summary Get job
// @Tags Job
// @Produce json
// @Param id path string true "Job id or slug"
// @Success 200 {object} model.JobResponse
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (jc *JobController) GetJobHandler(c *gin.Context) {
	id := c.Param("id")

	job, ok := jc.Catalog.FindByID(id)
	if !ok {
		job, ok = jc.Catalog.FindBySlug(id)
	}
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, job.ToJobResponse(appliedLookup(c)(job.ID)))
}

// appliedLookup reports applied jobs of the visitor profile, or nothing when no profile is known.
func appliedLookup(c *gin.Context) func(string) bool {
	p, err := utilities.ExtractProfile(c)
	if err != nil {
		return func(string) bool { return false }
	}
	return p.Applied.IsApplied
}
