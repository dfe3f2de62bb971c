package config

const (
	// MaxFileNameLength is the maximum length for file and folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFileNameLength = 255

	// MaxProjectNameLength is the maximum length for project names.
	MaxProjectNameLength = 100

	// MaxProjectDescriptionLength is the maximum length for project
	// descriptions.
	MaxProjectDescriptionLength = 500

	// MaxFilePathLength is the maximum length for materialized file paths.
	// Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxFilePathLength = 1000

	// MinUsernameLength and MaxUsernameLength bound account usernames.
	MinUsernameLength = 3
	MaxUsernameLength = 30

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
)
