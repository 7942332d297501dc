package usecase

// Rejection reasons that do not come from the transfer validator.
const (
	reasonAccountNotFound = "account_not_found"
	reasonCommitFailed    = "commit_failed"
)
