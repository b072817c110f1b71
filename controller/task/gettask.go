package task

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasky/apperr"
	"tasky/dto"
	"tasky/model"
	"tasky/services"
)

func ListTasks(c *gin.Context, svc *services.TaskService) {
	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	filter := services.ListFilter{Search: q.Search}
	var err error
	if q.Stage != "" {
		if filter.Stage, err = model.ParseStage(q.Stage); err != nil {
			respondError(c, err)
			return
		}
	}
	if q.IsTrashed != "" {
		if filter.Trashed, err = strconv.ParseBool(q.IsTrashed); err != nil {
			respondError(c, apperr.Validation("isTrashed", "%q is not a boolean", q.IsTrashed))
			return
		}
	}
	if filter.Order, err = services.ParseOrder(q.Order); err != nil {
		respondError(c, err)
		return
	}

	tasks, err := svc.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "tasks": tasks})
}

func GetTask(c *gin.Context, svc *services.TaskService) {
	task, err := svc.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "task": task})
}

func DashboardStatistics(c *gin.Context, svc *services.TaskService) {
	stats, err := svc.ComputeStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "statistics": stats})
}
