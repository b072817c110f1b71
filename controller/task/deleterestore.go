package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasky/dto"
	"tasky/model"
	"tasky/services"
)

func TrashTask(c *gin.Context, svc *services.TaskService) {
	res, err := svc.TrashTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task trashed successfully", "result": res})
}

func DeleteRestoreTask(c *gin.Context, svc *services.TaskService) {
	var q dto.DeleteRestoreQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}
	action, err := model.ParseActionType(q.ActionType)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := svc.DeleteRestore(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": actionMessage(res), "result": res})
}

func actionMessage(res *services.DeleteRestoreResult) string {
	switch {
	case res.Action == model.ActionDelete && res.All:
		return "All trashed tasks deleted successfully"
	case res.Action == model.ActionDelete:
		return "Task deleted successfully"
	case res.Action == model.ActionRestore && res.All:
		return "All trashed tasks restored successfully"
	case res.Action == model.ActionRestore:
		return "Task restored successfully"
	}
	return "Task trashed successfully"
}
