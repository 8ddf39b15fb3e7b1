package config

const (
	defaultUserConfigPath  = "~/.config/petdeface/config.toml"
	defaultPlacement       = "inplace"
	defaultFallbackSubject = "sub-temporarydefacee"
	defaultRuntime         = "singularity"
	defaultImage           = "openneuropet/petdeface:latest"
	defaultCommand         = "petdeface"
	defaultLicenseEnv      = "FREESURFER_LICENSE"
	defaultLicenseMount    = "/opt/freesurfer/license.txt"
	defaultOutputDirName   = "output"
	defaultResultsMode     = ResultsOverwrite
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// projectConfigNames are looked up in the working directory, in order, before
// the per-user config.
var projectConfigNames = []string{"config.json", "petdeface.toml"}

// Placement modes understood by the pipeline.
const (
	PlacementInPlace     = "inplace"
	PlacementAdjacent    = "adjacent"
	PlacementDerivatives = "derivatives"
)

// Container runtimes.
const (
	RuntimeSingularity = "singularity"
	RuntimeApptainer   = "apptainer"
	RuntimeDocker      = "docker"
)

// Result copy-back modes.
const (
	ResultsOverwrite = "overwrite"
	ResultsAlongside = "alongside"
	ResultsNone      = "none"
)

// WorkspaceInputDir is the staging tree directory inside a run workspace.
// pipeline.output_dir_name may not reuse it.
const WorkspaceInputDir = "input"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Placement:       defaultPlacement,
		FallbackSubject: defaultFallbackSubject,
		Pipeline: Pipeline{
			Runtime:       defaultRuntime,
			Image:         defaultImage,
			Command:       defaultCommand,
			LicenseEnv:    defaultLicenseEnv,
			LicenseMount:  defaultLicenseMount,
			OutputDirName: defaultOutputDirName,
		},
		Results: Results{
			Mode: defaultResultsMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
