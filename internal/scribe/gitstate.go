package scribe

// CommitStateProvider is the external commit-state collaborator. The strings
// it returns are opaque to this subsystem and stored verbatim on entries.
type CommitStateProvider interface {
	// Head returns the current commit-state identifier (e.g. a short commit
	// hash), or an error when no state is available. Prepare treats the
	// error as "no state" and records nothing.
	Head() (string, error)

	// Commit performs the external commit action with the given subject and
	// message and returns the resulting state identifier. Called by
	// Finalize only in git-entry mode; any error aborts the whole finalize.
	Commit(subject, message string) (string, error)
}
