package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetKanbanQueryIsNotConstructed = errors.New("GetKanbanQuery must be created via NewGetKanbanQuery constructor")

// kanbanStatuses are the board columns in workflow order.
var kanbanStatuses = []machine.Status{
	machine.ReceivedAtCenter,
	machine.UnderInspection,
	machine.AwaitingApproval,
	machine.Assigned,
	machine.InProgress,
	machine.PendingApproval,
	machine.RepairApproved,
	machine.RepairRejected,
	machine.ReadyForReturn,
}

// GetKanbanQuery groups the machines held by maintenance centers by status.
type GetKanbanQuery struct {
	actor    kernel.Actor
	centerID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetKanbanQuery limits the board to one center when centerID is set.
// Center staff only see their own center.
func NewGetKanbanQuery(actor kernel.Actor, centerID *kernel.UUID) (GetKanbanQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetKanbanQuery{}, err
	}
	return GetKanbanQuery{actor: actor, centerID: centerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetKanbanQuery) Validate() error {
	return q.guard.Validate(ErrGetKanbanQueryIsNotConstructed)
}

// GetKanbanQueryHandler reads the board straight from the machine table.
type GetKanbanQueryHandler struct {
	db *gorm.DB
}

// NewGetKanbanQueryHandler creates the handler.
func NewGetKanbanQueryHandler(db *gorm.DB) GetKanbanQueryHandler {
	return GetKanbanQueryHandler{db: db}
}

// Handle returns one column per center status, empty columns included.
func (h GetKanbanQueryHandler) Handle(ctx context.Context, query GetKanbanQuery) ([]KanbanColumn, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scope, scopeArgs, err := branchCondition(query.actor, query.centerID, "branch_id")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(kanbanStatuses))
	for _, s := range kanbanStatuses {
		names = append(names, s.String())
	}
	args := append([]any{names}, scopeArgs...)

	var cards []MachineCard
	err = h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			serial,
			manufacturer,
			model,
			status,
			branch_id,
			origin_branch_id,
			current_assignment_id,
			current_technician_id,
			updated_at
		FROM machines
		`+where("status IN ?", scope)+`
		ORDER BY updated_at, serial
	`, args...).Scan(&cards).Error
	if err != nil {
		return nil, err
	}

	columns := make([]KanbanColumn, len(names))
	position := make(map[string]int, len(names))
	for i, name := range names {
		columns[i] = KanbanColumn{Status: name, Machines: make([]MachineCard, 0)}
		position[name] = i
	}
	for _, card := range cards {
		i := position[card.Status]
		columns[i].Machines = append(columns[i].Machines, card)
	}
	return columns, nil
}
