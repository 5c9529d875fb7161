package repositories

// RepositoryProvider aggregates all repository facades required to assemble
// the service container.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	JournalRepo     JournalRepositoryWithTx
	TaxCodeRepo     TaxCodeReader
	IdempotencyRepo IdempotencyRepositoryFacade
}
