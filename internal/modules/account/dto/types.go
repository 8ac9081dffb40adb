package dto

type LinkInput struct {
	Code      string
	AccountID int
	Username  string
}

type LinkResult struct {
	Success bool
	Message string
}

type StateOutput struct {
	Linked      bool
	DisplayName string
}
