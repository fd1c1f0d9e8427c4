package consts

// Recommended permissions for files and directories tubevault might create.
const (
	// Media directories and files - world readable
	PermsGenericDir = 0o755
	PermsVideoDir   = 0o755
	PermsThumbDir   = 0o755
	PermsVideoFile  = 0o644
	PermsThumbFile  = 0o644

	// Other files
	PermsLogFile = 0o644
)
