package ports

import "context"

// Port: fire-and-forget propagation of local mutations to the sync server.
// Implementations must never block the caller and never surface failures;
// there is no ordering guarantee and no retry. Failures are logged only.
type SyncDispatcher interface {
	// Upsert announces a created or updated record of the named resource.
	Upsert(ctx context.Context, resource string, payload any)
	// Remove announces a deleted record of the named resource.
	Remove(ctx context.Context, resource string, id int)
}
