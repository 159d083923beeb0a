package ports

// OutputLog gives access to the output captured during the last invocation of a target.
//
//go:generate go run go.uber.org/mock/mockgen -source=output_log.go -destination=mocks/mock_output_log.go -package=mocks
type OutputLog interface {
	// Last returns the captured output of the target's most recent invocation.
	Last(target string) ([]byte, error)
}
