package dto

type CreateTaskRequest struct {
	Title    string   `json:"title" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Priority string   `json:"priority" binding:"required"`
	Stage    string   `json:"stage"`
	Team     []string `json:"team" binding:"omitempty,dive,required"`
	Assets   []string `json:"assets"`
}

// UpdateTaskRequest holds only client-settable fields; _id and activities in
// the body are ignored.
type UpdateTaskRequest struct {
	Title    *string   `json:"title"`
	Date     *string   `json:"date"`
	Priority *string   `json:"priority"`
	Stage    *string   `json:"stage"`
	Team     *[]string `json:"team"`
	Assets   *[]string `json:"assets"`
}

type CreateSubTaskRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Tag   string `json:"tag"`
}

type PostActivityRequest struct {
	Type     string `json:"type" binding:"required"`
	Activity string `json:"activity"`
}

type ListTasksQuery struct {
	Stage     string `form:"stage"`
	IsTrashed string `form:"isTrashed"`
	Search    string `form:"search"`
	Order     string `form:"order"`
}

type DeleteRestoreQuery struct {
	ActionType string `form:"actionType" binding:"required"`
}
