package models

// Task represents a task owned by the user who created it
type Task struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"` // nil when never supplied
	UserID      string  `json:"userId"`
}

// TaskUpdate carries the fields of a partial task update.
// A nil field is left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// Empty reports whether the update touches no field.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}
