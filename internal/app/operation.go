package app

// Operation tracks a CLI invocation that may mutate the store. Operations
// are created in memory with an empty ID. Only store-mutating commands
// persist them to the journal (giving them an id from the journal).
type Operation struct {
	ID         string
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this operation has been saved to the journal.
func (op *Operation) Persisted() bool {
	return op.ID != ""
}
