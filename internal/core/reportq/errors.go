package reportq

import "fmt"

// InvalidColumnError is returned when a requested group column is not registered
type InvalidColumnError struct {
	Columns []string
}

func (e *InvalidColumnError) Error() string {
	if len(e.Columns) == 0 {
		return "Invalid column"
	}
	return "Invalid column: " + quoteAll(e.Columns)
}

// UnknownColumnError is returned by label lookups for unregistered names
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

// InvalidFilterError is returned when a recognized filter carries a value of the wrong shape
type InvalidFilterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("filter %s: %s (got %v)", e.Field, e.Reason, e.Value)
}
