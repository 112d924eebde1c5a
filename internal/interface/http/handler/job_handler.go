package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/job"
)

type JobHandler struct {
	postJobUC   *job.PostJobUseCase
	getJobUC    *job.GetJobUseCase
	listJobsUC  *job.ListJobsUseCase
	cancelJobUC *job.CancelJobUseCase
}

func NewJobHandler(
	postJobUC *job.PostJobUseCase,
	getJobUC *job.GetJobUseCase,
	listJobsUC *job.ListJobsUseCase,
	cancelJobUC *job.CancelJobUseCase,
) *JobHandler {
	return &JobHandler{
		postJobUC:   postJobUC,
		getJobUC:    getJobUC,
		listJobsUC:  listJobsUC,
		cancelJobUC: cancelJobUC,
	}
}

func (h *JobHandler) PostJob(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	var req dto.PostJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.postJobUC.Execute(c.Request.Context(), job.PostJobInput{
		ClientID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Milestones:  req.Milestones,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToJobResponse(created))
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	j, err := h.getJobUC.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToJobResponse(j))
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := repository.JobFilter{
		Limit:  parseIntQuery(c, "limit", repository.DefaultListLimit),
		Offset: parseIntQuery(c, "offset", 0),
	}.Normalized()

	if status := c.Query("status"); status != "" {
		s, err := valueobject.NewJobStatus(status)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Status = string(s)
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "некорректный client_id")
			return
		}
		filter.ClientID = &id
	}
	if raw := c.Query("freelancer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "некорректный freelancer_id")
			return
		}
		filter.FreelancerID = &id
	}

	jobs, total, err := h.listJobsUC.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToJobResponses(jobs), total, filter.Limit, filter.Offset)
}

func (h *JobHandler) CancelJob(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthenticated(c, "требуется авторизация")
		return
	}

	jobID, err := parseJobID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	j, err := h.cancelJobUC.Execute(c.Request.Context(), jobID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToJobResponse(j))
}
