package approval

import (
	"fmt"
	"slices"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
)

// SubjectKind distinguishes the two approval workflows.
type SubjectKind string

const (
	// SubjectAssignment asks to approve the cost of one service assignment.
	// An approved and completed assignment opens a branch debt.
	SubjectAssignment SubjectKind = "ASSIGNMENT"
	// SubjectBatch asks to approve repairs of machines still under inspection.
	// It never opens a debt.
	SubjectBatch SubjectKind = "BATCH"
)

// ParseSubjectKind converts a stored value back to a SubjectKind.
func ParseSubjectKind(s string) (SubjectKind, error) {
	switch k := SubjectKind(s); k {
	case SubjectAssignment, SubjectBatch:
		return k, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("subject kind", fmt.Errorf("%q is not a subject kind", s))
	}
}

// Subject is what a request is about.
type Subject struct {
	kind         SubjectKind
	assignmentID *kernel.UUID
	machineID    *kernel.UUID
	serials      []string
}

// AssignmentSubject points a request at one repair of one machine.
func AssignmentSubject(assignmentID, machineID kernel.UUID) (Subject, error) {
	if err := assignmentID.Validate(); err != nil {
		return Subject{}, errs.NewValueIsRequiredErrorWithCause("assignmentID", err)
	}
	if err := machineID.Validate(); err != nil {
		return Subject{}, errs.NewValueIsRequiredErrorWithCause("machineID", err)
	}
	return Subject{kind: SubjectAssignment, assignmentID: &assignmentID, machineID: &machineID}, nil
}

// BatchSubject normalizes the serial list: trimmed, deduplicated, sorted.
func BatchSubject(serials []string) (Subject, error) {
	clean := make([]string, 0, len(serials))
	for _, s := range serials {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(clean, s) {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return Subject{}, errs.NewValueIsRequiredError("serials")
	}
	slices.Sort(clean)
	return Subject{kind: SubjectBatch, serials: clean}, nil
}

func (s Subject) Kind() SubjectKind {
	return s.kind
}

// AssignmentID is nil for batch subjects.
func (s Subject) AssignmentID() *kernel.UUID {
	return s.assignmentID
}

func (s Subject) MachineID() *kernel.UUID {
	return s.machineID
}

// Serials returns a copy of the batch serials, empty for assignment subjects.
func (s Subject) Serials() []string {
	return slices.Clone(s.serials)
}

// Key identifies the subject; at most one PENDING request exists per key.
func (s Subject) Key() string {
	if s.kind == SubjectAssignment {
		return string(SubjectAssignment) + ":" + s.assignmentID.String()
	}
	return string(SubjectBatch) + ":" + strings.Join(s.serials, ",")
}

// RestoreSubject rebuilds a subject read from persistence.
func RestoreSubject(kind SubjectKind, assignmentID, machineID *kernel.UUID, serials []string) (Subject, error) {
	switch kind {
	case SubjectAssignment:
		if assignmentID == nil || machineID == nil {
			return Subject{}, errs.NewValueIsRequiredError("assignmentID")
		}
		return AssignmentSubject(*assignmentID, *machineID)
	case SubjectBatch:
		return BatchSubject(serials)
	default:
		return Subject{}, errs.NewValueIsInvalidErrorWithCause("subject kind", fmt.Errorf("%q is not a subject kind", string(kind)))
	}
}
