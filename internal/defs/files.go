// Package defs holds file and directory names shared across packages.
package defs

// Project-level file names.
const (
	// ProjectConfigFile is the reconciled project configuration (JSONC).
	ProjectConfigFile = "reliverse.jsonc"

	// EnvFile is the working environment file composed by `reliverse env`.
	EnvFile = ".env"

	// EnvExampleFile is the template the required keys are read from.
	EnvExampleFile = ".env.example"

	// EnvLockFile guards a project's .env against concurrent compose runs.
	EnvLockFile = ".env.lock"

	// PackageJSON is read during project-type detection.
	PackageJSON = "package.json"
)

// User-level locations under the reliverse home directory.
const (
	// HomeDirName is the default reliverse home under the user's home directory.
	HomeDirName = ".reliverse"

	// MemoryFile stores remembered values (encrypted at rest).
	MemoryFile = "memory.yaml"

	// MemoryKeyFile holds the symmetric key protecting MemoryFile.
	MemoryKeyFile = "memory.key"
)

// Memory keys.
const (
	// MemoryLastEnvPath remembers the last .env file copied into a project.
	MemoryLastEnvPath = "last_env_path"
)
