// Package all links in every sink backend. Main packages import it for side
// effects so the registry carries the full backend set.
package all

import (
	_ "warnetl/internal/sink/jsonl"
	_ "warnetl/internal/sink/mssql"
	_ "warnetl/internal/sink/postgres"
	_ "warnetl/internal/sink/sqlite"
)
