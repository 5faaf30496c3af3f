package behavior

import (
	"fmt"

	"github.com/aretw0/courier/pkg/observability"
	"github.com/aretw0/courier/pkg/result"
)

// failer is implemented by result.Result of any type.
type failer interface {
	IsFailure() bool
	Errors() []result.Error
}

func requestName(req any) string {
	return fmt.Sprintf("%T", req)
}

// outcome classifies a dispatch: an error, a Result failure, or a success.
func outcome(out any, err error) string {
	if err != nil {
		return observability.OutcomeError
	}
	if f, ok := out.(failer); ok && f.IsFailure() {
		return observability.OutcomeFailure
	}
	return observability.OutcomeSuccess
}

func failureCodes(out any) []string {
	f, ok := out.(failer)
	if !ok {
		return nil
	}
	errs := f.Errors()
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}
