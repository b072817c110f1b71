package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasky/dto"
	"tasky/model"
	"tasky/services"
)

func UpdateTask(c *gin.Context, svc *services.TaskService) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	patch, err := toPatch(req)
	if err != nil {
		respondError(c, err)
		return
	}
	task, err := svc.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task updated successfully", "task": task})
}

func toPatch(req dto.UpdateTaskRequest) (model.TaskPatch, error) {
	patch := model.TaskPatch{
		Title:  req.Title,
		Team:   req.Team,
		Assets: req.Assets,
	}
	if req.Date != nil {
		date, err := model.ParseDate("date", *req.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if req.Priority != nil {
		p, err := model.ParsePriority(*req.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if req.Stage != nil {
		s, err := model.ParseStage(*req.Stage)
		if err != nil {
			return patch, err
		}
		patch.Stage = &s
	}
	return patch, nil
}

func CreateSubTask(c *gin.Context, svc *services.TaskService) {
	var req dto.CreateSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	date, err := model.ParseDate("date", req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := svc.AddSubtask(c.Request.Context(), c.Param("id"), model.SubTask{
		Title: req.Title,
		Date:  date,
		Tag:   req.Tag,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "SubTask added successfully", "task": task})
}

func PostActivity(c *gin.Context, svc *services.TaskService) {
	var req dto.PostActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	kind, err := model.ParseActivityType(req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := svc.PostActivity(c.Request.Context(), c.Param("id"), actor(c), services.PostActivityInput{
		Type:     kind,
		Activity: req.Activity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Activity posted successfully", "task": task})
}
