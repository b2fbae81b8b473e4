package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
)

// foldCaseFunction lowercases its argument with Unicode rules. SQLite's own
// lower() and LIKE only fold ASCII letters.
const foldCaseFunction = "fold_case"

func init() {
	if err := moderncsqlite.RegisterDeterministicScalarFunction(foldCaseFunction, 1, foldCase); err != nil {
		panic(fmt.Sprintf("sqlite: register %s: %v", foldCaseFunction, err))
	}
}

func foldCase(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
