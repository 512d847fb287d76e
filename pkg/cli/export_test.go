package cli

var (
	WriteReport        = writeReport
	GetIndexConfig     = getIndexConfig
	NewMigrationClient = newMigrationClient
)
