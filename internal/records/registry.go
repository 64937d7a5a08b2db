package records

import (
	"fmt"

	"github.com/wasteworks/reclaim/internal/validation"
)

// RegistryEntry names the column a table's row identity is read from and the
// record type its rows materialize as.
type RegistryEntry struct {
	RowIDField string
	Type       Type
}

// registry is the static table-name registry. Referencing a table that is not
// listed here is a configuration error, not a data error: it means a schema
// was added without deciding how its rows materialize.
var registry = map[string]RegistryEntry{
	validation.TableReceived:  {RowIDField: validation.ColRowID, Type: TypeReceived},
	validation.TableProcessed: {RowIDField: validation.ColRowID, Type: TypeProcessed},
	validation.TableSentOn:    {RowIDField: validation.ColRowID, Type: TypeSentOn},
	validation.TableExported:  {RowIDField: validation.ColRowID, Type: TypeExported},
}

// Registry resolves the registry entry for a table.
func Registry(table string) (RegistryEntry, error) {
	entry, ok := registry[table]
	if !ok {
		return RegistryEntry{}, fmt.Errorf("%w: %s", ErrTableNotRegistered, table)
	}
	return entry, nil
}
