// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/output"
	"github.com/temirov/repoctx/internal/packager"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	includeFlagName      = "include"
	includeFlagShorthand = "i"
	excludeFlagName      = "exclude"
	excludeFlagShorthand = "e"
	recursiveFlagName    = "recursive"
	recentFlagName       = "recent"
	lineNumbersFlagName  = "line-numbers"
	formatFlagName       = "format"
	gitignoreFlagName    = "gitignore"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	copyFlagName         = "copy"
	rootFlagName         = "root"
	configFlagName       = "config"
	globalFlagName       = "global"
	forceFlagName        = "force"

	outputFlagDescription      = "write the document to this file (the format extension is appended)"
	includeFlagDescription     = "only include files matching this glob (repeatable)"
	excludeFlagDescription     = "exclude paths matching this glob (repeatable)"
	recursiveFlagDescription   = "descend into subdirectories"
	recentFlagDescription      = "only include files modified within the last 7 days"
	lineNumbersFlagDescription = "prefix content lines with line numbers"
	formatFlagDescription      = "output format: markdown, json, xml or raw"
	gitignoreFlagDescription   = "honor the root .gitignore"
	tokensFlagDescription      = "count tokens for text files"
	modelFlagDescription       = "tokenizer model used for token counting"
	copyFlagDescription        = "copy the document to the clipboard"
	rootFlagDescription        = "repository root (defaults to the enclosing git work tree)"
	configFlagDescription      = "configuration file (defaults to " + utils.LocalConfigFileName + ")"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"

	rootUse              = utils.ApplicationName + " [paths...]"
	rootShortDescription = "package repository files into one context document"
	rootLongDescription  = `repoctx selects files of a repository using include and exclude globs,
the root .gitignore and .ignore files, and renders them with a directory tree,
git metadata and a summary into a single markdown, json, xml or raw document.
Without paths the whole repository is packaged.`
	rootUsageExample = `  # Package the current repository to stdout
  repoctx

  # Package only Go sources under cmd and internal into context.md
  repoctx -i '**/*.go' -o context cmd internal

  # Package the top level only as JSON and copy it to the clipboard
  repoctx --recursive no --format json --copy`
	initUse              = "init"
	initShortDescription = "write the default configuration file"
	versionTemplate      = utils.ApplicationName + " version: {{.Version}}\n"

	initWrittenMessageFormat     = "configuration written to %s\n"
	loadConfigurationErrorFormat = "load configuration: %w"
	tokenizerErrorFormat         = "initialize tokenizer: %w"
	outputWrittenMessage         = "context written"
	workingDirectoryErrorFormat  = "determine working directory: %w"
)

// Dependencies are the side effects the commands rely on.
type Dependencies struct {
	Logger *zap.Logger
	Stdout io.Writer
	Copier output.Copier
	// WorkingDirectory overrides os.Getwd.
	WorkingDirectory string
}

// Execute runs the repoctx application with the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger: logger,
		Stdout: os.Stdout,
		Copier: output.NewSystemClipboard(),
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	var flags commandFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ArbitraryArgs,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runPackage(command, arguments, &flags, dependencies)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	if dependencies.Stdout != nil {
		rootCommand.SetOut(dependencies.Stdout)
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&flags.output, outputFlagName, outputFlagShorthand, utils.EmptyString, outputFlagDescription)
	flagSet.StringArrayVarP(&flags.include, includeFlagName, includeFlagShorthand, nil, includeFlagDescription)
	flagSet.StringArrayVarP(&flags.exclude, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	registerBooleanFlag(flagSet, &flags.recursive, recursiveFlagName, defaultRecursive, recursiveFlagDescription)
	registerBooleanFlag(flagSet, &flags.recent, recentFlagName, false, recentFlagDescription)
	registerBooleanFlag(flagSet, &flags.lineNumbers, lineNumbersFlagName, false, lineNumbersFlagDescription)
	flagSet.StringVar(&flags.format, formatFlagName, defaultFormat, formatFlagDescription)
	registerBooleanFlag(flagSet, &flags.gitignore, gitignoreFlagName, defaultUseGitignore, gitignoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, false, copyFlagDescription)
	flagSet.StringVar(&flags.root, rootFlagName, utils.EmptyString, rootFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, utils.EmptyString, configFlagDescription)

	rootCommand.AddCommand(newInitCommand(dependencies))
	return rootCommand
}

func newInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), initWrittenMessageFormat, writtenPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func runPackage(command *cobra.Command, targets []string, flags *commandFlags, dependencies Dependencies) error {
	workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
	})
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, configurationError)
	}
	resolved := resolveSettings(command.Flags(), *flags, applicationConfiguration)

	var tokenCounter tokenizer.Counter
	if resolved.Tokens {
		counter, modelName, counterError := tokenizer.NewCounter(tokenizer.Config{Model: resolved.Model})
		if counterError != nil {
			return fmt.Errorf(tokenizerErrorFormat, counterError)
		}
		tokenCounter = counter
		resolved.Model = modelName
	}

	result, buildError := packager.Build(packager.Options{
		RootPath:         resolved.Root,
		WorkingDirectory: workingDirectory,
		Targets:          targets,
		Filter: config.FilterConfig{
			IncludePatterns: resolved.Include,
			ExcludePatterns: resolved.Exclude,
			Recursive:       resolved.Recursive,
			RecentOnly:      resolved.Recent,
			UseGitignore:    resolved.UseGitignore,
		},
		Format:       resolved.Format,
		LineNumbers:  resolved.LineNumbers,
		TokenCounter: tokenCounter,
		TokenModel:   resolved.Model,
		Warn:         utils.WarningSink(dependencies.Logger),
	})
	if buildError != nil {
		return buildError
	}

	outputPath := resolved.Output
	if outputPath != utils.EmptyString {
		outputPath = utils.ResolvePath(workingDirectory, outputPath)
	}
	writtenPath, writeError := output.Write(output.Destination{
		FilePath:  outputPath,
		Clipboard: resolved.Copy,
		Stdout:    command.OutOrStdout(),
		Copier:    dependencies.Copier,
	}, result.Format, result.Rendered)
	if writeError != nil {
		return writeError
	}
	if writtenPath != utils.EmptyString {
		dependencies.Logger.Info(outputWrittenMessage,
			zap.String("path", writtenPath),
			zap.Int("files", result.Context.Summary.TotalFiles),
			zap.String("size", result.Context.Summary.TotalSize),
		)
	}
	return nil
}

func resolveWorkingDirectory(dependencies Dependencies) (string, error) {
	if dependencies.WorkingDirectory != utils.EmptyString {
		return dependencies.WorkingDirectory, nil
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return utils.EmptyString, fmt.Errorf(workingDirectoryErrorFormat, err)
	}
	return workingDirectory, nil
}
