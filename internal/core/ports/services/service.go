package services

// ServiceContainer aggregates the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Posting     PostingSvcFacade
	COAPolicy   COAPolicySvc
	SoDPolicy   SoDPolicySvc
	Tax         TaxCalculatorSvc
	Validator   JournalValidatorSvc
	Idempotency IdempotencyGateSvc
}
