package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"petdeface/internal/bids"
	"petdeface/internal/config"
	"petdeface/internal/fileutil"
	"petdeface/internal/license"
	"petdeface/internal/logging"
	"petdeface/internal/results"
	"petdeface/internal/services"
	"petdeface/internal/services/petdeface"
	"petdeface/internal/staging"
)

// Run executes one defacing run. The returned Result reflects how far the
// run progressed even when an error is returned.
func (d *Driver) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{RunID: d.newRunID(), Phase: PhaseStart}
	ctx = services.WithRunID(ctx, res.RunID)

	err := d.run(ctx, req, &res)
	res.Duration = time.Since(start)
	if err != nil {
		d.logFailure(ctx, &res, err)
		res.Phase = PhaseFailed
		return res, err
	}

	res.Phase = PhaseSucceeded
	d.phaseLogger(ctx, res).Info("defacing run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("copies", len(res.Copies)),
		logging.Duration("duration", res.Duration),
	)
	return res, nil
}

func (d *Driver) run(ctx context.Context, req Request, res *Result) error {
	cfg := req.Config
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, string(PhaseStart), opResolve, "run configuration missing", nil)
	}
	if req.T1 == "" || req.PET == "" {
		return services.Wrap(services.ErrConfiguration, string(PhaseStart), opResolve, "both a T1 and a PET file are required", nil)
	}
	res.Sidecar = bids.SidecarPath(req.PET)

	ids, err := ResolveIdentifiers(req.T1, req.PET, cfg, d.phaseLogger(ctx, *res))
	if err != nil {
		return err
	}
	res.Identifiers = ids
	ctx = services.WithSubject(ctx, ids.Subject)
	d.advance(ctx, res, PhaseIdentifiersResolved,
		logging.String(logging.FieldSubject, ids.Subject),
		logging.String("t1_session", ids.T1Session),
		logging.String("pet_session", ids.PETSession),
	)

	if err := verifyInputs(req.T1, req.PET, res.Sidecar); err != nil {
		return err
	}

	ws, err := staging.NewWorkspace(cfg.ResolveStagingDir(), res.RunID, cfg.Pipeline.OutputDirName)
	if err != nil {
		return services.Wrap(nil, string(res.Phase), opStage, "create workspace", err)
	}
	res.Workspace = ws.Root()
	defer func() { d.closeWorkspace(ctx, *res, ws) }()

	originals := staging.Inputs{T1: req.T1, PET: req.PET, Sidecar: res.Sidecar}
	staged, err := staging.Build(layoutFor(ws.InputDir(), ids), originals)
	if err != nil {
		return services.Wrap(nil, string(res.Phase), opStage, "build staging tree", err)
	}
	d.advance(ctx, res, PhaseStaged, logging.String("workspace", ws.Root()))

	var before results.Digests
	if cfg.Placement == config.PlacementInPlace {
		if before, err = results.Snapshot(staged.T1, staged.PET); err != nil {
			return services.Wrap(nil, string(res.Phase), opStage, "hash staged images", err)
		}
	}

	installDir := d.installDir
	if installDir == "" {
		if installDir, err = cfg.ResolveInstallDir(); err != nil {
			return services.Wrap(services.ErrConfiguration, string(res.Phase), opConfig, "resolve install directory", err)
		}
	}
	res.License, err = license.ResolveAndInstall(d.lookupEnv, cfg.Pipeline.LicenseEnv, installDir)
	if err != nil {
		return err
	}
	d.advance(ctx, res, PhaseConfigLoaded,
		logging.String("license", res.License),
		logging.String("n_procs", cfg.ProcessCount()),
		logging.String("placement", cfg.Placement),
	)

	if err := d.dispatch(ctx, req, res, ws); err != nil {
		return err
	}
	d.advance(ctx, res, PhaseDispatched)

	if err := d.collect(ctx, req, res, staged, ws, originals, before); err != nil {
		return err
	}
	d.advance(ctx, res, PhaseCollected, logging.Int("copies", len(res.Copies)))
	return nil
}

func (d *Driver) dispatch(ctx context.Context, req Request, res *Result, ws *staging.Workspace) error {
	cfg := req.Config
	binary, err := d.resolveRuntime(cfg.RuntimeBinary())
	if err != nil {
		return services.Wrap(services.ErrExternalTool, string(res.Phase), opDispatch, "resolve container runtime", err)
	}

	opts := []petdeface.Option{petdeface.WithBinary(binary)}
	if d.exec != nil {
		opts = append(opts, petdeface.WithExecutor(d.exec))
	}
	client, err := petdeface.New(settingsFor(cfg), opts...)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, string(res.Phase), opDispatch, "configure pipeline", err)
	}

	inv := petdeface.Invocation{
		InputDir:     ws.InputDir(),
		OutputDir:    ws.OutputDir(),
		LicensePath:  res.License,
		ProcessCount: cfg.ProcessCount(),
		Placement:    cfg.Placement,
	}
	res.Binary, res.Args = client.Command(inv)

	logger := d.phaseLogger(ctx, *res)
	logger.Info("launching defacing pipeline",
		logging.String(logging.FieldEventType, "pipeline_start"),
		logging.String("binary", res.Binary),
		logging.Strings("args", res.Args),
	)
	pipelineLogger := logging.NewComponentLogger(logger, "pipeline")
	started := time.Now()
	if err := client.Run(ctx, inv, func(line string) {
		pipelineLogger.Info(line)
	}); err != nil {
		return err
	}
	logger.Info("defacing pipeline finished",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.Duration("pipeline_duration", time.Since(started)),
	)
	return nil
}

func (d *Driver) collect(ctx context.Context, req Request, res *Result, staged staging.Staged, ws *staging.Workspace, originals staging.Inputs, before results.Digests) error {
	cfg := req.Config
	logger := d.phaseLogger(ctx, *res)

	art, err := results.Locate(staged, ws.OutputDir(), cfg.Placement)
	if err != nil {
		return err
	}
	res.Artifacts = art
	if len(before) > 0 {
		if res.Unchanged, err = before.Unchanged(); err != nil {
			return services.Wrap(nil, string(res.Phase), opCollect, "hash defaced images", err)
		}
		for _, path := range res.Unchanged {
			logging.WarnWithContext(logger, "pipeline left staged image unchanged", "output_unchanged",
				logging.String("path", path),
				logging.String(logging.FieldErrorHint, "inspect the pipeline output for skipped subjects"),
				logging.String(logging.FieldImpact, "copy-back writes the original image, not a defaced one"),
			)
		}
	}
	if art.Mask == "" {
		logging.WarnWithContext(logger, "defacing mask not found in pipeline output", "mask_missing",
			logging.String("output_dir", ws.OutputDir()),
			logging.String(logging.FieldErrorHint, "inspect the pipeline derivatives directory"),
			logging.String(logging.FieldImpact, "defaced images copied without a mask"),
		)
	}

	copies, err := results.CopyBack(art, originals, cfg.Results.Mode)
	res.Copies = copies
	for _, c := range copies {
		logger.Info("copied defaced artifact",
			logging.String(logging.FieldEventType, "artifact_copied"),
			logging.String("kind", c.Kind),
			logging.String("destination", c.Destination),
		)
	}
	if err != nil {
		return services.Wrap(nil, string(res.Phase), opCollect, "copy results back", err)
	}
	if cfg.Results.Mode == config.ResultsNone {
		logger.Info("result copy-back disabled",
			logging.Args(logging.DecisionAttrs("results_mode", config.ResultsNone, "results.mode is none")...)...,
		)
	}
	return nil
}

func (d *Driver) advance(ctx context.Context, res *Result, next Phase, attrs ...logging.Attr) {
	res.Phase = next
	attrs = append(attrs, logging.String(logging.FieldEventType, "phase_transition"))
	d.phaseLogger(ctx, *res).Info("run phase reached", logging.Args(attrs...)...)
}

func (d *Driver) phaseLogger(ctx context.Context, res Result) *slog.Logger {
	return logging.WithContext(services.WithPhase(ctx, string(res.Phase)), d.logger)
}

func (d *Driver) closeWorkspace(ctx context.Context, res Result, ws *staging.Workspace) {
	if err := ws.Close(); err != nil {
		logging.WarnWithContext(d.phaseLogger(ctx, res), "failed to remove run workspace", "workspace_cleanup_failed",
			logging.String("workspace", ws.Root()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run petdeface clean to remove it"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return
	}
	d.phaseLogger(ctx, res).Debug("run workspace removed", logging.String("workspace", ws.Root()))
}

func (d *Driver) logFailure(ctx context.Context, res *Result, err error) {
	logging.ErrorWithContext(d.phaseLogger(ctx, *res), "defacing run failed", "run_failed",
		logging.Error(err),
		logging.String("error_kind", services.Kind(err)),
		logging.String("failed_phase", string(res.Phase)),
		logging.String(logging.FieldErrorHint, failureHint(err)),
		logging.Alert("run_failure"),
	)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "check the config file and FREESURFER_LICENSE"
	case errors.Is(err, services.ErrIdentifierConflict):
		return "make sure the T1 and PET files belong to the same subject"
	case errors.Is(err, services.ErrNotFound):
		return "check the input paths and the PET sidecar"
	case errors.Is(err, services.ErrExternalTool):
		return "inspect the pipeline output above"
	case errors.Is(err, services.ErrValidation):
		return "the pipeline finished but wrote no defaced images; inspect its output"
	default:
		return "check logs for details"
	}
}

func verifyInputs(t1, pet, sidecar string) error {
	for _, in := range []struct{ name, path string }{
		{"T1 image", t1},
		{"PET image", pet},
		{"PET sidecar", sidecar},
	} {
		if fileutil.Exists(in.path) {
			continue
		}
		message := fmt.Sprintf("%s %s does not exist", in.name, in.path)
		if in.name == "PET sidecar" {
			message = fmt.Sprintf("PET sidecar not found; expected %s next to %s", in.path, pet)
		}
		return services.Wrap(services.ErrNotFound, string(PhaseIdentifiersResolved), opStage, message, nil)
	}
	return nil
}

func layoutFor(root string, ids Identifiers) staging.Layout {
	return staging.Layout{
		Root:       root,
		Subject:    ids.Subject,
		T1Session:  ids.T1Session,
		PETSession: ids.PETSession,
	}
}
