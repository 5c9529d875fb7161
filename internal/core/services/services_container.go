package services

import (
	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// NewServiceContainer wires the posting engine's services over the supplied
// repositories and the injected SoD policy table.
func NewServiceContainer(policy domain.SoDPolicy, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.COAPolicy = NewCOAPolicyService(repos.AccountRepo)
	container.SoDPolicy = NewSoDPolicyService(policy)
	container.Tax = NewTaxService(repos.TaxCodeRepo)
	container.Validator = NewJournalValidator(container.COAPolicy, container.Tax)
	container.Idempotency = NewIdempotencyService(repos.IdempotencyRepo)
	container.Posting = NewPostingService(
		repos.JournalRepo,
		repos.AccountRepo,
		container.Validator,
		container.SoDPolicy,
		container.Idempotency,
	)

	return container
}
