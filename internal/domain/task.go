package domain

import (
	"strings"
	"time"
)

// Task is a work item ("Tarea") owned by a single user.
// JSON names follow the contract existing clients already speak.
type Task struct {
	ID            int64     `json:"id"`
	Title         string    `json:"titulo"`
	Description   string    `json:"descripcion"`
	StartDate     time.Time `json:"fechaIni"`
	EndDate       time.Time `json:"fechaFin"`
	OwnerUserName string    `json:"userName"`
	Status        Status    `json:"estado"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks the field constraints shared by create and update.
// Status is validated separately because updates never touch it.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("titulo", "cannot be empty", nil)
	}
	if t.EndDate.Before(t.StartDate) {
		return NewValidationError("fechaFin", "cannot be before fechaIni", nil)
	}
	if strings.TrimSpace(t.OwnerUserName) == "" {
		return NewValidationError("userName", "cannot be empty", nil)
	}
	if t.Status != "" && !t.Status.Valid() {
		return NewValidationError("estado", "is not a known status", nil)
	}
	return nil
}

// ApplyFields copies the user-editable fields of src onto t.
// ID, Status and timestamps are left alone.
func (t *Task) ApplyFields(src Task) {
	t.Title = src.Title
	t.Description = src.Description
	t.StartDate = src.StartDate
	t.EndDate = src.EndDate
	if src.OwnerUserName != "" {
		t.OwnerUserName = src.OwnerUserName
	}
	t.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy of t so stores never hand out shared pointers.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
