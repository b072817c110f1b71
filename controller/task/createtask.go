package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasky/dto"
	"tasky/model"
	"tasky/services"
)

func CreateTask(c *gin.Context, svc *services.TaskService) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	date, err := model.ParseDate("date", req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	priority, err := model.ParsePriority(req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	var stage model.Stage
	if req.Stage != "" {
		if stage, err = model.ParseStage(req.Stage); err != nil {
			respondError(c, err)
			return
		}
	}

	task, err := svc.CreateTask(c.Request.Context(), actor(c), services.CreateTaskInput{
		Title:    req.Title,
		Date:     date,
		Priority: priority,
		Stage:    stage,
		Team:     req.Team,
		Assets:   req.Assets,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": true, "message": "Task created successfully", "task": task})
}

func DuplicateTask(c *gin.Context, svc *services.TaskService) {
	task, err := svc.DuplicateTask(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": true, "message": "Task duplicated successfully", "task": task})
}
