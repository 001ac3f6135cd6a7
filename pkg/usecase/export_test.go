package usecase

// MaxConcurrentPulls is exported for testing
const MaxConcurrentPulls = maxConcurrentPulls

// PersistenceError is exported for testing
var PersistenceError = persistenceError
