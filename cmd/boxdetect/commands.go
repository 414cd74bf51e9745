package main

import (
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/boxdetect/internal/calibrate"
	"github.com/ironsheep/boxdetect/internal/detection"
	"github.com/ironsheep/boxdetect/internal/imaging"
	"github.com/ironsheep/boxdetect/internal/params"
	"github.com/ironsheep/boxdetect/internal/server"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "boxdetect %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

// loadConfig returns the defaults overlaid with path, or the defaults alone
// when path is empty.
func loadConfig(path string, suppressWarnings bool) (*params.ParameterSet, error) {
	if path == "" {
		return params.Default(), nil
	}
	var opts []params.LoadOption
	if suppressWarnings {
		opts = append(opts, params.WithSuppressWarnings())
	}
	return params.FromFile(path, opts...)
}

// writeConfig saves p to output, or prints it when output is empty.
func writeConfig(cmd *cobra.Command, p *params.ParameterSet, output string) error {
	if output == "" {
		return p.SaveTo(cmd.OutOrStdout())
	}
	if err := p.Save(output); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"path":           output,
		"num_iterations": p.NumIterations(),
	}).Info("Saved configuration")
	return nil
}

func NewDefaultsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Write the built-in configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeConfig(cmd, params.Default(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func NewExpandCommand() *cobra.Command {
	var (
		configPath       string
		suppressWarnings bool
		asJSON           bool
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the parameter combinations of a configuration",
		Long: `Print the parameter combinations of a configuration, one per line.

List-valued parameters are broadcast to the longest list; shorter lists repeat
their first element.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(configPath, suppressWarnings)
			if err != nil {
				return err
			}
			if asJSON {
				all, err := p.Expand()
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			tuples, err := p.Tuples()
			if err != nil {
				return err
			}
			for i, t := range tuples {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, t)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (default built-in)")
	cmd.Flags().BoolVar(&suppressWarnings, "suppress-warnings", false, "do not warn about unrecognized fields")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the combinations as a JSON array")
	return cmd
}

func NewCalibrateCommand() *cobra.Command {
	var (
		configPath  string
		samplesPath string
		imagePath   string
		output      string
	)
	opts := calibrate.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Calibrate size ranges from observed box sizes",
		Long: `Calibrate size ranges from observed box sizes.

Sizes are clustered and every cluster becomes one entry of width_range,
height_range, wh_ratio_range and morph_kernels_type. Sizes come from a samples
file of [height, width] pairs, or from measuring boxes in an image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(configPath, false)
			if err != nil {
				return err
			}

			if samplesPath == "" && imagePath == "" {
				return errors.New("one of --samples or --image is required")
			}

			var samples []calibrate.Sample
			if samplesPath != "" {
				samples, err = calibrate.LoadSamples(samplesPath)
			} else {
				samples, err = measureImage(imagePath, p)
			}
			if err != nil {
				return err
			}

			opts.Logger = logrus.StandardLogger()
			if _, err := calibrate.Calibrate(p, samples, opts); err != nil {
				return err
			}
			return writeConfig(cmd, p, output)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration to start from (default built-in)")
	flags.StringVar(&samplesPath, "samples", "", "YAML file of [height, width] pairs")
	flags.StringVar(&imagePath, "image", "", "image to measure boxes in")
	flags.StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	flags.Float64Var(&opts.Epsilon, "epsilon", opts.Epsilon, "largest distance between sizes in one cluster")
	flags.Float64Var(&opts.MarginPercent, "margin-percent", opts.MarginPercent, "fraction of each bound added as margin")
	flags.IntVar(&opts.MarginPxLimit, "margin-px-limit", opts.MarginPxLimit, "largest margin in pixels")
	flags.BoolVar(&opts.UseRectKernelForSmall, "rect-kernel-for-small", opts.UseRectKernelForSmall, "use rectangle kernels for small clusters")
	flags.IntVar(&opts.RectKernelThreshold, "rect-kernel-threshold", opts.RectKernelThreshold, "size limit in pixels for rectangle kernels")
	cmd.MarkFlagsMutuallyExclusive("samples", "image")
	return cmd
}

// measureImage detects boxes in the image at path using p's scaling factors
// and dilation settings.
func measureImage(path string, p *params.ParameterSet) ([]calibrate.Sample, error) {
	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return nil, err
	}
	res, err := detection.MeasureBoxes(img, detection.MeasureOptionsFrom(p))
	if err != nil {
		return nil, err
	}
	for _, sc := range res.Scales {
		logrus.WithFields(logrus.Fields{
			"factor":   sc.Factor,
			"detected": sc.Detected,
		}).Debug("Measured scale")
	}
	logrus.WithField("samples", res.Count).Info("Measured boxes")
	return res.Samples, nil
}

func NewMeasureCommand() *cobra.Command {
	var (
		configPath string
		imagePath  string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure box sizes in an image and write a samples file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(configPath, false)
			if err != nil {
				return err
			}
			samples, err := measureImage(imagePath, p)
			if err != nil {
				return err
			}
			if err := calibrate.SaveSamples(output, samples); err != nil {
				return pkgerrors.Wrapf(err, "write samples to %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d samples written to %s\n", len(samples), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "image to measure boxes in")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration whose scaling factors are used (default built-in)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "samples file to write")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			server.Version = Version
			logrus.WithFields(logrus.Fields{
				"version": Version,
				"commit":  GitCommit,
			}).Debug("Starting MCP server")

			if err := server.New(logrus.StandardLogger()).Run(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}
