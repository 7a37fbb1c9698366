/*
Copyright © 2024 the pbemap authors.
This file is part of pbemap.

pbemap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pbemap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pbemap.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package pbemaputil contains the command-line interface and configuration
// handling for pbemap.
package pbemaputil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pbemap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	meshSets := []*pflag.FlagSet{sweepCmd.Flags(), pointCmd.Flags()}

	// Options are the configuration options available to pbemap.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages:
              one of panic, fatal, error, warn, info, debug, or trace.
              Rejected Newton seeds are logged at the debug level.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Mesh.X0",
			usage: `
              Mesh.X0 specifies the lower bound of the floc size domain.`,
			defaultVal: 0.0,
			flagsets:   meshSets,
		},
		{
			name: "Mesh.X1",
			usage: `
              Mesh.X1 specifies the upper bound of the floc size domain.`,
			defaultVal: 1.0,
			flagsets:   meshSets,
		},
		{
			name: "Mesh.N",
			usage: `
              Mesh.N specifies the number of size bins.`,
			shorthand:  "n",
			defaultVal: 100,
			flagsets:   meshSets,
		},
		{
			name: "Newton.Tolerance",
			usage: `
              Newton.Tolerance specifies the relative step tolerance of the
              Newton iteration.`,
			defaultVal: 1.0e-8,
			flagsets:   meshSets,
		},
		{
			name: "Newton.MaxIterations",
			usage: `
              Newton.MaxIterations specifies the maximum number of Newton
              iterations for each seed.`,
			defaultVal: 100,
			flagsets:   meshSets,
		},
		{
			name: "Newton.SeedTimeout",
			usage: `
              Newton.SeedTimeout specifies the maximum wall-clock time spent
              on each seed, for example "30s". Zero means no limit.`,
			defaultVal: "0s",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.Aggregation",
			usage: `
              Kernels.Aggregation specifies the aggregation (coalescence)
              rate of flocs of sizes x and y. The default is (cbrt(x) +
              cbrt(y))**3. Expressions may use the variables x and y and
              the functions cbrt, sqrt, exp, log, abs, and pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.FragmentDensity",
			usage: `
              Kernels.FragmentDensity specifies the post-fragmentation
              density of fragments of size y from a parent of size x. It
              is zero outside of [0, x]. The default is 6*y*(x-y)/x**3.
              Expressions may use the variables y and x and the functions
              cbrt, sqrt, exp, log, abs, and pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.Fragmentation",
			usage: `
              Kernels.Fragmentation specifies the fragmentation rate of
              flocs of size x. The default is x. Expressions may use the
              variable x and the functions cbrt, sqrt, exp, log, abs, and
              pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.Growth",
			usage: `
              Kernels.Growth specifies the growth rate of flocs of size x,
              where p is the growth parameter b. It must be linear in p.
              The default is p*(x+1). Expressions may use the variables x
              and p and the functions cbrt, sqrt, exp, log, abs, and pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.Renewal",
			usage: `
              Kernels.Renewal specifies the renewal rate of flocs of size
              x, where p is the renewal parameter a. It must be linear in
              p. The default is p*(x+1). Expressions may use the variables
              x and p and the functions cbrt, sqrt, exp, log, abs, and
              pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Kernels.Removal",
			usage: `
              Kernels.Removal specifies the removal rate of flocs of size
              x, where p is the removal parameter c. It must be linear in
              p. The default is p*x. Expressions may use the variables x
              and p and the functions cbrt, sqrt, exp, log, abs, and pow.`,
			defaultVal: "",
			flagsets:   meshSets,
		},
		{
			name: "Sweep.AMin",
			usage: `
              Sweep.AMin specifies the first value of the renewal
              parameter a.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.AMax",
			usage: `
              Sweep.AMax specifies the (excluded) upper bound of the
              renewal parameter a.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.ANum",
			usage: `
              Sweep.ANum specifies the number of values of the renewal
              parameter a.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.BMin",
			usage: `
              Sweep.BMin specifies the first value of the growth
              parameter b.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.BMax",
			usage: `
              Sweep.BMax specifies the (excluded) upper bound of the
              growth parameter b.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.BNum",
			usage: `
              Sweep.BNum specifies the number of values of the growth
              parameter b.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.CMin",
			usage: `
              Sweep.CMin specifies the first value of the removal
              parameter c.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.CMax",
			usage: `
              Sweep.CMax specifies the (excluded) upper bound of the
              removal parameter c.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.CNum",
			usage: `
              Sweep.CNum specifies the number of values of the removal
              parameter c.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers specifies the number of grid points that are
              evaluated concurrently. Values <= 0 use all available CPUs.`,
			shorthand:  "w",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the NetCDF file where the
              sweep results will be written.`,
			shorthand:  "o",
			defaultVal: "pbe_region.ncf",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Point.A",
			usage: `
              Point.A specifies the renewal parameter a.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "Point.B",
			usage: `
              Point.B specifies the growth parameter b.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "Point.C",
			usage: `
              Point.C specifies the removal parameter c.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
		{
			name: "spectrum",
			usage: `
              spectrum specifies whether to print the whole Jacobian
              spectrum at the steady state.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{pointCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PBEMAP")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(pointCmd)
	Root.AddCommand(inspectCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pbemap: problem reading configuration file: %v", err)
		}
	}
	return setLogLevel(Cfg)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pbemap",
	Short: "Steady state existence and stability maps for a population balance equation.",
	Long: `pbemap maps the existence and linear stability of positive steady states of a
size-structured population balance equation with aggregation, fragmentation,
growth, renewal, and removal over a grid of the renewal (a), growth (b), and
removal (c) rate parameters.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PBEMAP_var' where 'var' is the
name of the variable to be set in upper case, with '.' replaced by '_' (for example PBEMAP_MESH_N).
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of pbemap.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pbemap v%s\n", pbemap.Version)
	},
	DisableAutoGenTag: true,
}

// sweepCmd calculates the existence and stability map over a parameter grid.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Map steady state existence and stability over a parameter grid.",
	Long: `sweep finds a positive steady state, if one exists, for every point in the
Cartesian grid of the a, b, and c parameters, calculates the leading
eigenvalue of the Jacobian at each steady state, and saves the results to
OutputFile as a NetCDF table with the columns [a, b, c, existence, eigenvalue].`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mesh, err := MeshConfig(Cfg)
		if err != nil {
			return err
		}
		kernels, err := KernelsConfig(Cfg)
		if err != nil {
			return err
		}
		grid, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		newton, err := NewtonConfig(Cfg)
		if err != nil {
			return err
		}
		workers, err := workersConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Sweep(cmd.Context(), cmd.OutOrStdout(), mesh, kernels, grid, newton, workers, outputFile,
			logrus.StandardLogger())
	},
	DisableAutoGenTag: true,
}

// pointCmd solves for the steady state at a single parameter triple.
var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Find the steady state and its stability for a single parameter triple.",
	Long: `point searches for a positive steady state at the parameters given by
Point.A, Point.B, and Point.C and prints whether one exists, which seed
produced it, and the leading eigenvalue of the Jacobian. With --spectrum,
every eigenvalue is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mesh, err := MeshConfig(Cfg)
		if err != nil {
			return err
		}
		newton, err := NewtonConfig(Cfg)
		if err != nil {
			return err
		}
		kernels, err := KernelsConfig(Cfg)
		if err != nil {
			return err
		}
		p, err := PointConfig(Cfg)
		if err != nil {
			return err
		}
		return Point(cmd.Context(), cmd.OutOrStdout(), mesh, kernels, newton, p, Cfg.GetBool("spectrum"),
			logrus.StandardLogger())
	},
	DisableAutoGenTag: true,
}

// inspectCmd summarizes a saved result table.
var inspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "Summarize a saved sweep result file.",
	Long: `inspect reads a NetCDF result file created by the sweep command and prints
the mesh it was created with and the number of grid points with stable,
unstable, and no steady states.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Inspect(cmd.OutOrStdout(), args[0])
	},
	DisableAutoGenTag: true,
}

// configCmd prints the current configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the current configuration.",
	Long: `config prints the configuration that results from combining the defaults,
the configuration file, environment variables, and command-line arguments,
in TOML format. The output can be used as a configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return PrintConfig(cmd.OutOrStdout(), Cfg)
	},
	DisableAutoGenTag: true,
}
