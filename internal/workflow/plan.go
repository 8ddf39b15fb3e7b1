package workflow

import (
	"log/slog"
	"path/filepath"

	"petdeface/internal/bids"
	"petdeface/internal/config"
	"petdeface/internal/license"
	"petdeface/internal/results"
	"petdeface/internal/services"
	"petdeface/internal/services/petdeface"
	"petdeface/internal/staging"
)

// placeholderRunID stands in for the run identifier in previews.
const placeholderRunID = "<run-id>"

// Preview describes what Run would do for a request.
type Preview struct {
	Identifiers Identifiers
	Sidecar     string
	Workspace   string
	Layout      staging.Layout
	StagedT1    string
	StagedPET   string
	Binary      string
	Args        []string
	Copies      []results.Copy
}

// Plan resolves identifiers, the staging layout, the pipeline command, and the
// copy-back destinations for req without touching the filesystem or the
// environment.
func Plan(req Request, logger *slog.Logger) (Preview, error) {
	cfg := req.Config
	if cfg == nil {
		return Preview{}, services.Wrap(services.ErrConfiguration, string(PhaseStart), opResolve, "run configuration missing", nil)
	}
	ids, err := ResolveIdentifiers(req.T1, req.PET, cfg, logger)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		Identifiers: ids,
		Sidecar:     bids.SidecarPath(req.PET),
		Workspace:   filepath.Join(cfg.ResolveStagingDir(), staging.WorkspacePrefix+placeholderRunID),
	}
	inputDir := filepath.Join(p.Workspace, config.WorkspaceInputDir)
	outputDir := filepath.Join(p.Workspace, cfg.Pipeline.OutputDirName)
	p.Layout = layoutFor(inputDir, ids)
	p.StagedT1 = filepath.Join(p.Layout.AnatDir(), filepath.Base(req.T1))
	p.StagedPET = filepath.Join(p.Layout.PETDir(), filepath.Base(req.PET))

	installDir, err := cfg.ResolveInstallDir()
	if err != nil {
		return Preview{}, services.Wrap(services.ErrConfiguration, string(PhaseStart), opConfig, "resolve install directory", err)
	}
	client, err := petdeface.New(settingsFor(cfg))
	if err != nil {
		return Preview{}, services.Wrap(services.ErrConfiguration, string(PhaseStart), opDispatch, "configure pipeline", err)
	}
	p.Binary, p.Args = client.Command(petdeface.Invocation{
		InputDir:     inputDir,
		OutputDir:    outputDir,
		LicensePath:  filepath.Join(installDir, license.InstalledName),
		ProcessCount: cfg.ProcessCount(),
		Placement:    cfg.Placement,
	})

	art := results.Artifacts{
		T1:      p.StagedT1,
		PET:     p.StagedPET,
		Sidecar: filepath.Join(p.Layout.PETDir(), filepath.Base(p.Sidecar)),
		Mask:    filepath.Join(outputDir, "derivatives", "petdeface", ids.Subject, "defacing_mask.nii.gz"),
	}
	if cfg.Placement != config.PlacementInPlace {
		art.T1 = filepath.Join(outputDir, p.Layout.RelativeAnatDir(), filepath.Base(req.T1))
		art.PET = filepath.Join(outputDir, p.Layout.RelativePETDir(), filepath.Base(req.PET))
		art.Sidecar = filepath.Join(outputDir, p.Layout.RelativePETDir(), filepath.Base(p.Sidecar))
	}
	p.Copies = results.Plan(art, staging.Inputs{T1: req.T1, PET: req.PET, Sidecar: p.Sidecar}, cfg.Results.Mode)
	return p, nil
}

func settingsFor(cfg *config.Config) petdeface.Settings {
	return petdeface.Settings{
		Runtime:        cfg.Pipeline.Runtime,
		Image:          cfg.Pipeline.Image,
		Command:        cfg.Pipeline.Command,
		LicenseMount:   cfg.Pipeline.LicenseMount,
		TimeoutSeconds: cfg.Pipeline.TimeoutSeconds,
	}
}
