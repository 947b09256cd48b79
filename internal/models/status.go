package models

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusProcess = "PROCESS"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

var validNext = map[string]map[string]bool{
	StatusPending: {StatusPaid: true, StatusFailed: true},
	StatusPaid:    {StatusProcess: true, StatusSuccess: true, StatusFailed: true},
	StatusProcess: {StatusSuccess: true, StatusFailed: true},
	StatusSuccess: {},
	StatusFailed:  {},
}

func CanTransition(from, to string) bool {
	return validNext[from][to]
}
