package jobs

import (
	"errors"

	"reconciler/core/logger"
	"reconciler/core/reconcile"
	"reconciler/core/records"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for jobs, executions and record sets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the job routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	jobs := app.Group("/jobs")
	jobs.Post("/", h.HandleCreateJob)
	jobs.Get("/", h.HandleListJobs)
	jobs.Get("/:id", h.HandleGetJob)
	jobs.Post("/:id/run", h.HandleRunJob)
	jobs.Get("/:id/executions", h.HandleListExecutions)

	executions := app.Group("/executions")
	executions.Get("/:id", h.HandleGetExecution)
	executions.Get("/:id/matches/:matchId/explain", h.HandleExplainMatch)

	recs := app.Group("/records")
	recs.Get("/", h.HandleListRecordSets)
	recs.Put("/*", h.HandleUploadRecords)
	recs.Delete("/*", h.HandleDeleteRecords)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrJobNotFound),
		errors.Is(err, ErrExecutionNotFound),
		errors.Is(err, ErrMatchNotFound),
		errors.Is(err, records.ErrRecordSetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, reconcile.ErrInvalidRule),
		errors.Is(err, records.ErrInvalidRef):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrRunInProgress),
		errors.Is(err, ErrVersionConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleCreateJob creates a job.
// @Summary Create Job
// @Description Creates a reconciliation job over two stored record sets. Rules are validated before the job is stored.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body CreateJobRequest true "Job definition"
// @Success 201 {object} Job
// @Failure 400 {object} map[string]string "Invalid request or rules"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /jobs [post]
func (h *Handler) HandleCreateJob(c *fiber.Ctx) error {
	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body: " + err.Error()})
	}

	job, err := h.service.CreateJob(c.Context(), req)
	if err != nil {
		return h.fail(c, "Job creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleListJobs lists jobs.
// @Summary List Jobs
// @Tags jobs
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {array} Job
// @Router /jobs [get]
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit < 0 || offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit and offset must not be negative"})
	}

	jobs, err := h.service.ListJobs(c.Context(), limit, offset)
	if err != nil {
		return h.fail(c, "Job listing failed", err)
	}
	return c.JSON(jobs)
}

// HandleGetJob returns a job.
// @Summary Get Job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Job
// @Failure 404 {object} map[string]string "Not Found"
// @Router /jobs/{id} [get]
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	job, err := h.service.GetJob(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Job lookup failed", err)
	}
	return c.JSON(job)
}

// HandleRunJob runs a job synchronously.
// @Summary Run Job
// @Description Runs the job now and returns the execution summary. A job that is already running yields 409.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Execution
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Run in progress"
// @Failure 500 {object} map[string]string "Run failed"
// @Router /jobs/{id}/run [post]
func (h *Handler) HandleRunJob(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Job run requested", zap.String("job_id", id))

	exec, err := h.service.RunJob(c.Context(), id)
	if err != nil {
		if exec != nil {
			status := statusFor(err)
			l.Error("Job run failed", zap.String("job_id", id), zap.Error(err))
			return c.Status(status).JSON(fiber.Map{"error": err.Error(), "execution": exec})
		}
		return h.fail(c, "Job run rejected", err)
	}
	return c.JSON(exec)
}

// HandleListExecutions lists executions of a job.
// @Summary List Executions
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} Execution
// @Failure 404 {object} map[string]string "Not Found"
// @Router /jobs/{id}/executions [get]
func (h *Handler) HandleListExecutions(c *fiber.Ctx) error {
	execs, err := h.service.ListExecutions(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Execution listing failed", err)
	}
	return c.JSON(execs)
}

// HandleGetExecution returns an execution with its matches and exceptions.
// @Summary Get Execution
// @Tags executions
// @Produce json
// @Param id path string true "Execution ID"
// @Success 200 {object} Execution
// @Failure 404 {object} map[string]string "Not Found"
// @Router /executions/{id} [get]
func (h *Handler) HandleGetExecution(c *fiber.Ctx) error {
	exec, err := h.service.GetExecution(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Execution lookup failed", err)
	}
	return c.JSON(exec)
}

// HandleExplainMatch explains a stored match.
// @Summary Explain Match
// @Description Rebuilds the confidence score of a stored match and returns its narrative.
// @Tags executions
// @Produce json
// @Param id path string true "Execution ID"
// @Param matchId path string true "Match ID"
// @Success 200 {object} MatchExplanation
// @Failure 404 {object} map[string]string "Not Found"
// @Router /executions/{id}/matches/{matchId}/explain [get]
func (h *Handler) HandleExplainMatch(c *fiber.Ctx) error {
	explanation, err := h.service.ExplainMatch(c.Context(), c.Params("id"), c.Params("matchId"))
	if err != nil {
		return h.fail(c, "Match explanation failed", err)
	}
	return c.JSON(explanation)
}

// HandleListRecordSets lists stored record sets.
// @Summary List Record Sets
// @Tags records
// @Produce json
// @Success 200 {array} string
// @Router /records [get]
func (h *Handler) HandleListRecordSets(c *fiber.Ctx) error {
	refs, err := h.service.ListRecordSets(c.Context())
	if err != nil {
		return h.fail(c, "Record set listing failed", err)
	}
	return c.JSON(refs)
}

// HandleUploadRecords stores a record set.
// @Summary Upload Record Set
// @Description Stores a JSON array of flat records (or {"records": [...]}) under the given ref.
// @Tags records
// @Accept json
// @Produce json
// @Param ref path string true "Record set ref, may contain slashes"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Malformed record set"
// @Router /records/{ref} [put]
func (h *Handler) HandleUploadRecords(c *fiber.Ctx) error {
	// Params are only valid until the handler returns; the store may keep the ref.
	ref := utils.CopyString(c.Params("*"))
	recs, err := records.DecodeBytes(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.UploadRecords(c.Context(), ref, recs); err != nil {
		return h.fail(c, "Record set upload failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ref": ref, "records": len(recs)})
}

// HandleDeleteRecords removes a record set.
// @Summary Delete Record Set
// @Tags records
// @Param ref path string true "Record set ref"
// @Success 204
// @Router /records/{ref} [delete]
func (h *Handler) HandleDeleteRecords(c *fiber.Ctx) error {
	if err := h.service.DeleteRecords(c.Context(), utils.CopyString(c.Params("*"))); err != nil {
		return h.fail(c, "Record set deletion failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
