package cli

import (
	"github.com/spf13/pflag"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	defaultRecursive    = true
	defaultUseGitignore = true
	defaultFormat       = types.FormatMarkdown
)

// commandFlags receives the parsed command line values.
type commandFlags struct {
	output      string
	include     []string
	exclude     []string
	recursive   bool
	recent      bool
	lineNumbers bool
	format      string
	gitignore   bool
	tokens      bool
	model       string
	copy        bool
	root        string
	configPath  string
}

// runSettings is the effective configuration of one run.
type runSettings struct {
	Output       string
	Include      []string
	Exclude      []string
	Recursive    bool
	Recent       bool
	LineNumbers  bool
	Format       string
	UseGitignore bool
	Tokens       bool
	Model        string
	Copy         bool
	Root         string
}

// resolveSettings applies flag over configuration over built-in default.
// A flag counts only when it was set on the command line.
func resolveSettings(flagSet *pflag.FlagSet, flags commandFlags, applicationConfiguration config.ApplicationConfiguration) runSettings {
	changed := func(name string) bool {
		return flagSet != nil && flagSet.Changed(name)
	}
	pickBool := func(name string, flagValue bool, configured *bool, fallback bool) bool {
		if changed(name) {
			return flagValue
		}
		return config.BoolOrDefault(configured, fallback)
	}
	pickString := func(name string, flagValue string, configured string, fallback string) string {
		if changed(name) {
			return flagValue
		}
		if configured != utils.EmptyString {
			return configured
		}
		return fallback
	}
	pickPatterns := func(name string, flagValue []string, configured []string) []string {
		if changed(name) {
			return utils.DeduplicatePatterns(flagValue)
		}
		return utils.DeduplicatePatterns(configured)
	}

	return runSettings{
		Output:       pickString(outputFlagName, flags.output, applicationConfiguration.Output, utils.EmptyString),
		Include:      pickPatterns(includeFlagName, flags.include, applicationConfiguration.Include),
		Exclude:      pickPatterns(excludeFlagName, flags.exclude, applicationConfiguration.Exclude),
		Recursive:    pickBool(recursiveFlagName, flags.recursive, applicationConfiguration.Recursive, defaultRecursive),
		Recent:       pickBool(recentFlagName, flags.recent, applicationConfiguration.Recent, false),
		LineNumbers:  pickBool(lineNumbersFlagName, flags.lineNumbers, applicationConfiguration.LineNumbers, false),
		Format:       pickString(formatFlagName, flags.format, applicationConfiguration.Format, defaultFormat),
		UseGitignore: pickBool(gitignoreFlagName, flags.gitignore, applicationConfiguration.UseGitignore, defaultUseGitignore),
		Tokens:       pickBool(tokensFlagName, flags.tokens, applicationConfiguration.Tokens.Enabled, false),
		Model:        pickString(modelFlagName, flags.model, applicationConfiguration.Tokens.Model, tokenizer.DefaultModel),
		Copy:         pickBool(copyFlagName, flags.copy, applicationConfiguration.Clipboard, false),
		Root:         flags.root,
	}
}
