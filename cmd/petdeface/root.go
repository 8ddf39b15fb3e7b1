package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var inputs inputFlags

	ctx := newCommandContext(&configFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:   "petdeface -t T1_FILE -p PET_FILE",
		Short: "Deface a T1-weighted MRI and PET image pair",
		Long: `Deface a T1-weighted MRI and its PET counterpart with the containerized
petdeface pipeline.

The inputs are staged into a throwaway BIDS dataset, the pipeline runs against
it, and the defaced images are copied back next to the originals. The FreeSurfer
license is read from the FREESURFER_LICENSE environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeface(cmd, ctx, inputs)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print machine-readable JSON output")
	inputs.register(rootCmd)

	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// inputFlags holds the T1/PET pair shared by the run and plan commands.
type inputFlags struct {
	t1  string
	pet string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.t1, "t1_file", "t", "", "T1-weighted MRI image (.nii or .nii.gz)")
	cmd.Flags().StringVarP(&f.pet, "pet_file", "p", "", "PET image (.nii or .nii.gz) with a .json sidecar beside it")
}
