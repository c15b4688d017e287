package sqlfrag

// Style identifies a placeholder spelling a dialect renders parameters with.
type Style int

const (
	// StyleDollar renders positional placeholders as $1, $2, ... (PostgreSQL).
	StyleDollar Style = iota
	// StyleColon renders positional placeholders as :1, :2, ... (named-style
	// drivers that accept sequential numeric binds).
	StyleColon
	// StyleQuestion renders every placeholder as a bare ? (MySQL, SQLite).
	StyleQuestion

	styleCount = 3
)
