// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/navwar/gomirror/pkg/fs"
	"github.com/navwar/gomirror/pkg/lfs"
	"github.com/navwar/gomirror/pkg/log"
	"github.com/navwar/gomirror/pkg/rules"
	"github.com/navwar/gomirror/pkg/ts"
)

const (
	GoMirrorVersion = "0.0.1"
)

// Config Flags
const (
	flagConfig = "config"
	flagRoots  = "roots" // only in the config file
)

// Debug Flag
const (
	flagDebug = "debug"
)

// Sync Flags
const (
	flagDryRun             = "dry-run"
	flagExclude            = "exclude"
	flagIgnoreFile         = "ignore-file"
	flagNoDefaultRules     = "no-default-rules"
	flagTimestampPrecision = "timestamp-precision"
)

// Verify Flags
const (
	flagThreads = "threads"
)

// Sync Defaults
const (
	DefaultTimestampPrecision = time.Duration(0)
)

// Log Flags
const (
	flagLogPath    = "log-path"
	flagLogFormat  = "log-format"
	flagLogPerm    = "log-perm"
	flagTimeLayout = "time-layout"
	flagTimeZone   = "time-zone"
)

// Log Defaults
const (
	DefaultLogFormat = log.FormatText
)

func initConfigFlags(flag *pflag.FlagSet) {
	flag.StringP(flagConfig, "c", "", "path to a config file (yaml, toml, or json) with root pairs and flags")
}

func initDebugFlags(flag *pflag.FlagSet) {
	flag.BoolP(flagDebug, "d", false, "print debug messages, including skipped paths")
}

func initRuleFlags(flag *pflag.FlagSet) {
	flag.StringP(flagExclude, "e", "", "a colon-separated list of patterns to exclude with support for wildcards, e.g., *.tmp:build/**")
	flag.String(flagIgnoreFile, rules.DefaultIgnoreFile, "name of the gitignore-style file read from each source root")
	flag.Bool(flagNoDefaultRules, false, "do not apply the default exclusion and protection rules")
}

func initSyncFlags(flag *pflag.FlagSet) {
	flag.Bool(flagDryRun, false, "report what would be copied and deleted without writing")
	flag.Duration(flagTimestampPrecision, DefaultTimestampPrecision, "precision to use when checking timestamps.  Zero compares timestamps exactly.")
}

func initVerifyFlags(flag *pflag.FlagSet) {
	flag.Int(flagThreads, 1, "maximum number of parallel comparisons, or -1 for the number of CPUs")
}

func initLogFlags(flag *pflag.FlagSet) {
	flag.String(flagLogPath, "-", "path to the log output.  Defaults to the operating system's stdout device.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	flag.StringP(flagLogFormat, "f", DefaultLogFormat, "output log format.  Either jsonl or text.")
	flag.StringP(flagTimeLayout, "t", "Full", "the layout to use for log timestamps.  Use go layout format, or the name of a layout.  Use gomirror layouts to show all named layouts.")
	flag.StringP(flagTimeZone, "z", "Local", "the timezone to use for log timestamps")
}

func initSyncCommandFlags(flag *pflag.FlagSet) {
	initConfigFlags(flag)
	initDebugFlags(flag)
	initRuleFlags(flag)
	initSyncFlags(flag)
	initLogFlags(flag)
}

func initPlanCommandFlags(flag *pflag.FlagSet) {
	initConfigFlags(flag)
	initDebugFlags(flag)
	initRuleFlags(flag)
	flag.Duration(flagTimestampPrecision, DefaultTimestampPrecision, "precision to use when checking timestamps.  Zero compares timestamps exactly.")
	initLogFlags(flag)
}

func initVerifyCommandFlags(flag *pflag.FlagSet) {
	initConfigFlags(flag)
	initDebugFlags(flag)
	initRuleFlags(flag)
	initVerifyFlags(flag)
	initLogFlags(flag)
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	if configPath := v.GetString(flagConfig); len(configPath) > 0 {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return v, fmt.Errorf("error reading config file %q: %w", configPath, err)
		}
	}
	return v, nil
}

type rootConfig struct {
	Source      string `mapstructure:"source"`
	Destination string `mapstructure:"destination"`
}

// initRootPairs returns the root pairs from the config file followed by the positional arguments.
func initRootPairs(v *viper.Viper, args []string) ([]fs.RootPair, error) {
	configs := []rootConfig{}
	if v.IsSet(flagRoots) {
		if err := v.UnmarshalKey(flagRoots, &configs); err != nil {
			return nil, fmt.Errorf("error parsing %q from config: %w", flagRoots, err)
		}
	}
	for i := 0; i+1 < len(args); i += 2 {
		configs = append(configs, rootConfig{Source: args[i], Destination: args[i+1]})
	}
	pairs := make([]fs.RootPair, 0, len(configs))
	for _, c := range configs {
		if len(c.Source) == 0 || len(c.Destination) == 0 {
			return nil, fmt.Errorf("root pair is missing source or destination: %q -> %q", c.Source, c.Destination)
		}
		sourceAbsolutePath, err := filepath.Abs(strings.TrimPrefix(c.Source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("error creating absolute path for source: %q", c.Source)
		}
		destinationAbsolutePath, err := filepath.Abs(strings.TrimPrefix(c.Destination, "file://"))
		if err != nil {
			return nil, fmt.Errorf("error creating absolute path for destination: %q", c.Destination)
		}
		pairs = append(pairs, fs.RootPair{
			Source:      sourceAbsolutePath,
			Destination: destinationAbsolutePath,
		})
	}
	return pairs, nil
}

// getExclude accepts a colon-separated string from a flag or a list from a config file.
func getExclude(v *viper.Viper) []string {
	if s, ok := v.Get(flagExclude).(string); ok {
		if len(s) == 0 {
			return []string{}
		}
		return strings.Split(s, ":")
	}
	return v.GetStringSlice(flagExclude)
}

func checkLogConfig(v *viper.Viper) error {
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	if logFormat := v.GetString(flagLogFormat); logFormat != log.FormatText && logFormat != log.FormatJSONL {
		return fmt.Errorf("unknown log format %q, expecting %q or %q", logFormat, log.FormatText, log.FormatJSONL)
	}
	if _, err := ts.ParseLocation(v.GetString(flagTimeZone)); err != nil {
		return fmt.Errorf("error parsing time zone location %q: %w", v.GetString(flagTimeZone), err)
	}
	return nil
}

func checkRootPairs(pairs []fs.RootPair) error {
	if len(pairs) == 0 {
		return errors.New("expecting at least one source and destination")
	}
	for _, pair := range pairs {
		// check for cycle errors
		if err := lfs.Check(pair.Source, pair.Destination); err != nil {
			return err
		}
	}
	return nil
}

func checkSyncConfig(v *viper.Viper, args []string, pairs []fs.RootPair) error {
	if len(args)%2 != 0 {
		return fmt.Errorf("expecting pairs of positional arguments for source and destination, but found %d arguments", len(args))
	}
	if err := checkRootPairs(pairs); err != nil {
		return err
	}
	if err := checkLogConfig(v); err != nil {
		return fmt.Errorf("error with log configuration: %w", err)
	}
	if timestampPrecision := v.GetDuration(flagTimestampPrecision); timestampPrecision < 0 {
		return fmt.Errorf("timestamp precision cannot be negative: %s", timestampPrecision)
	}
	return nil
}

func checkVerifyConfig(v *viper.Viper, args []string, pairs []fs.RootPair) error {
	if len(args)%2 != 0 {
		return fmt.Errorf("expecting pairs of positional arguments for source and destination, but found %d arguments", len(args))
	}
	if err := checkRootPairs(pairs); err != nil {
		return err
	}
	if err := checkLogConfig(v); err != nil {
		return fmt.Errorf("error with log configuration: %w", err)
	}
	if threads := v.GetInt(flagThreads); threads == 0 {
		return errors.New("threads cannot be zero")
	}
	return nil
}

// initRules returns the rules shared by all root pairs.
func initRules(v *viper.Viper) (*rules.Rules, error) {
	r := rules.New()
	if !v.GetBool(flagNoDefaultRules) {
		r = rules.Default()
	}
	if err := r.AddPatterns(getExclude(v)...); err != nil {
		return nil, fmt.Errorf("error parsing exclude patterns: %w", err)
	}
	return r, nil
}

// initRootFilters gives every root pair the shared rules plus the ignore file of its source root.
func initRootFilters(pairs []fs.RootPair, shared *rules.Rules, ignoreFile string) error {
	if len(ignoreFile) == 0 {
		for i := range pairs {
			pairs[i].Filter = shared
		}
		return nil
	}
	osfs := afero.NewOsFs()
	for i, pair := range pairs {
		// a single-file root, or a missing one, has no ignore file
		if fi, err := osfs.Stat(pair.Source); err != nil || !fi.IsDir() {
			pairs[i].Filter = shared
			continue
		}
		lines, err := rules.ReadIgnoreFile(osfs, filepath.Join(pair.Source, ignoreFile))
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			pairs[i].Filter = shared
			continue
		}
		r := shared.Clone()
		r.AddIgnoreLines(lines...)
		pairs[i].Filter = r
	}
	return nil
}

func initLogger(v *viper.Viper) (*log.SimpleLogger, error) {
	path := v.GetString(flagLogPath)
	perm := v.GetString(flagLogPerm)

	timeZone, err := ts.ParseLocation(v.GetString(flagTimeZone))
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone location %q: %w", v.GetString(flagTimeZone), err)
	}

	options := &log.Options{
		Format:   v.GetString(flagLogFormat),
		Layout:   ts.ParseLayout(v.GetString(flagTimeLayout)),
		Location: timeZone,
	}

	if path == os.DevNull {
		return log.NewSimpleLoggerWithOptions(io.Discard, options), nil
	}

	if path == "-" {
		return log.NewSimpleLoggerWithOptions(os.Stdout, options), nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return log.NewSimpleLoggerWithOptions(f, options), nil
}

func runSync(cmd *cobra.Command, args []string, dryRun bool) error {
	ctx := cmd.Context()

	v, err := initViper(cmd)
	if err != nil {
		return fmt.Errorf("error initializing viper: %w", err)
	}

	pairs, err := initRootPairs(v, args)
	if err != nil {
		return err
	}

	if errConfig := checkSyncConfig(v, args, pairs); errConfig != nil {
		return errConfig
	}

	logger, err := initLogger(v)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	debug := v.GetBool(flagDebug)
	dryRun = dryRun || v.GetBool(flagDryRun)
	timestampPrecision := v.GetDuration(flagTimestampPrecision)

	shared, err := initRules(v)
	if err != nil {
		return err
	}
	if err := initRootFilters(pairs, shared, v.GetString(flagIgnoreFile)); err != nil {
		return err
	}

	_ = logger.Log("Configuration", map[string]interface{}{
		"dry_run":             dryRun,
		"exclude":             getExclude(v),
		"ignore_file":         v.GetString(flagIgnoreFile),
		"no_default_rules":    v.GetBool(flagNoDefaultRules),
		"roots":               len(pairs),
		"timestamp_precision": timestampPrecision.String(),
	})

	report := fs.Sync(ctx, &fs.SyncInput{
		Roots:              pairs,
		NewFileSystem:      lfs.NewFactory(afero.NewOsFs()),
		DryRun:             dryRun,
		Debug:              debug,
		Logger:             logger,
		TimestampPrecision: timestampPrecision,
	})

	for _, err := range report.Errors {
		_ = logger.Log("Error synchronizing", map[string]interface{}{
			"err": err.Error(),
		})
	}

	_ = logger.Log("Done synchronizing", map[string]interface{}{
		"copied":  len(report.Copied),
		"touched": len(report.Touched),
		"deleted": len(report.Deleted),
		"skipped": len(report.Skipped),
		"missing": len(report.Missing),
		"errors":  len(report.Errors),
		"written": humanize.Bytes(uint64(report.Written)),
		"dry_run": dryRun,
	})

	if !report.OK() {
		os.Exit(1)
	}

	return nil
}

func main() {
	rootCommand := &cobra.Command{
		Use:                   `gomirror [flags]`,
		DisableFlagsInUseLine: true,
		Short: strings.Join([]string{
			"gomirror is a simple command line program for mirroring source directories into destination directories.",
			"Files are copied when new or modified and deleted from the destination when they no longer exist at the source.",
			"Local paths are specified using the \"file://\" scheme or a path without a scheme.",
		}, "\n"),
	}

	layoutsCommand := &cobra.Command{
		Use:                   `layouts`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported timestamp layouts",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range ts.LayoutNames() {
				fmt.Printf("%s: %s\n", name, ts.NamedLayouts[name])
			}
			return nil
		},
	}

	syncCommand := &cobra.Command{
		Use:                   "sync SOURCE DESTINATION [SOURCE DESTINATION]...",
		DisableFlagsInUseLine: true,
		Short:                 "sync",
		Long:                  "mirror each source into its destination, deleting destination files missing from the source",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, false)
		},
	}
	initSyncCommandFlags(syncCommand.Flags())

	planCommand := &cobra.Command{
		Use:                   "plan SOURCE DESTINATION [SOURCE DESTINATION]...",
		DisableFlagsInUseLine: true,
		Short:                 "plan",
		Long:                  "show what sync would copy and delete without writing",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, true)
		},
	}
	initPlanCommandFlags(planCommand.Flags())

	verifyCommand := &cobra.Command{
		Use:                   "verify SOURCE DESTINATION [SOURCE DESTINATION]...",
		DisableFlagsInUseLine: true,
		Short:                 "verify",
		Long:                  "compare each destination with its source by content",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()

			v, err := initViper(cmd)
			if err != nil {
				return fmt.Errorf("error initializing viper: %w", err)
			}

			pairs, err := initRootPairs(v, args)
			if err != nil {
				return err
			}

			if errConfig := checkVerifyConfig(v, args, pairs); errConfig != nil {
				return errConfig
			}

			logger, err := initLogger(v)
			if err != nil {
				return fmt.Errorf("error initializing logger: %w", err)
			}

			threads := v.GetInt(flagThreads)
			if threads == -1 {
				threads = runtime.NumCPU()
			}

			shared, err := initRules(v)
			if err != nil {
				return err
			}
			if err := initRootFilters(pairs, shared, v.GetString(flagIgnoreFile)); err != nil {
				return err
			}

			report, err := fs.Verify(ctx, &fs.VerifyInput{
				Roots:         pairs,
				NewFileSystem: lfs.NewFactory(afero.NewOsFs()),
				Logger:        logger,
				MaxThreads:    threads,
			})
			if err != nil {
				_ = logger.Log("Error verifying", map[string]interface{}{
					"err": err.Error(),
				})
				os.Exit(1)
			}

			for _, p := range report.Missing {
				_ = logger.Log("MISSING", map[string]interface{}{"dst": p})
			}
			for _, p := range report.Extra {
				_ = logger.Log("EXTRA", map[string]interface{}{"dst": p})
			}
			for _, p := range report.Different {
				_ = logger.Log("DIFFERENT", map[string]interface{}{"dst": p})
			}

			_ = logger.Log("Done verifying", map[string]interface{}{
				"missing":   len(report.Missing),
				"extra":     len(report.Extra),
				"different": len(report.Different),
			})

			if !report.OK() {
				os.Exit(1)
			}

			return nil
		},
	}
	initVerifyCommandFlags(verifyCommand.Flags())

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(GoMirrorVersion)
			return nil
		},
	}

	rootCommand.AddCommand(layoutsCommand, syncCommand, planCommand, verifyCommand, versionCommand)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gomirror: "+err.Error())
		fmt.Fprintln(os.Stderr, "Try \"gomirror --help\" for more information.")
		stop()
		os.Exit(1)
	}
}
