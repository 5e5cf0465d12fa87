package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeForeignKeyViolation is raised when a referenced row is missing
	PgErrorCodeForeignKeyViolation = "23503"
)

// Constraint names referenced by error mapping
const (
	ConstraintDuelsTopicFK = "duels_topic_id_fkey"
)

// Advisory lock namespaces. Keys are hashed from ids with hashtextextended(id, namespace).
const (
	LockNamespaceUserSlot   = 1
	LockNamespaceDuelAppend = 2
)

// Listing bounds
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)
