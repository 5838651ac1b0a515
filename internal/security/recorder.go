package security

import (
	"context"
	"fmt"

	"github.com/femar/gestao/internal/rbac"
)

// Action labels for events raised by the core itself.
const (
	ActionPrivilegeEscalation = "Potencial escalonamento de privilégio"
	ActionPermissionsSaved    = "Matriz de permissões alterada"
)

// Recorder classifies an action and appends it to the log. Callers that raise
// events go through it so classification stays in one place.
type Recorder struct {
	log        *Log
	classifier *Classifier
}

// NewRecorder wires a Recorder.
func NewRecorder(log *Log, classifier *Classifier) *Recorder {
	return &Recorder{log: log, classifier: classifier}
}

// Record classifies sig and appends the event.
func (r *Recorder) Record(ctx context.Context, actor string, sig Signal, action, details string) (Event, error) {
	return r.log.Append(ctx, NewEvent{
		User:    actor,
		Action:  action,
		Details: details,
		Risk:    r.classifier.Classify(sig),
	})
}

// PrivilegeEscalation implements rbac.Auditor.
func (r *Recorder) PrivilegeEscalation(ctx context.Context, actor string, role rbac.Role) error {
	entry, _ := rbac.Lookup(rbac.PermManagePermissions)
	details := fmt.Sprintf("Permissão %q concedida ao perfil %s.", entry.Label, role.Label())
	_, err := r.Record(ctx, actor, Signal{Kind: KindPermissionGrant, Permission: rbac.PermManagePermissions}, ActionPrivilegeEscalation, details)
	return err
}

// MatrixSaved implements rbac.Auditor.
func (r *Recorder) MatrixSaved(ctx context.Context, actor string, changes int) error {
	details := fmt.Sprintf("Matriz de permissões salva com %d alteração(ões).", changes)
	_, err := r.Record(ctx, actor, Signal{Kind: KindPermissionSave}, ActionPermissionsSaved, details)
	return err
}
