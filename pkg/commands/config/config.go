package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	projectconfig "github.com/lazysuperheroes/mission-cli/config"
	"github.com/lazysuperheroes/mission-cli/config/configs"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/migration"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:  "config",
	Usage: "View or manage the project's mission.yaml",
	Subcommands: []*cli.Command{
		showCommand,
		setCommand,
		editCommand,
		migrateCommand,
		initCommand,
	},
}

var showCommand = &cli.Command{
	Name:  "show",
	Usage: "Display the current project configuration",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		cfgPath, err := common.ProjectConfigPath()
		if err != nil {
			return err
		}
		cfg, err := common.LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		logger.Info("Project: %s", cfg.Project.Name)
		logger.Info("Config version: %s (latest %s)", cfg.Version, configs.LatestVersion)
		logger.Info("Telemetry enabled: %t", cfg.Project.TelemetryEnabled)
		if cfg.Version != configs.LatestVersion {
			logger.Warn("mission.yaml is out of date, run `mission config migrate`")
		}

		if err := common.ListYaml(cfgPath, cCtx.App.Writer); err != nil {
			return fmt.Errorf("failed to list config: %w", err)
		}
		return nil
	},
}

var setCommand = &cli.Command{
	Name:      "set",
	Usage:     "Set values in mission.yaml using dot paths, e.g. cache.schedule='@every 10m'",
	ArgsUsage: "<key=value>...",
	Flags:     append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		items := cCtx.Args().Slice()
		if len(items) == 0 {
			return fmt.Errorf("usage: mission config set <key=value>")
		}

		cfgPath, err := common.ProjectConfigPath()
		if err != nil {
			return err
		}
		backup, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		rootDoc, err := common.LoadYAML(cfgPath)
		if err != nil {
			return fmt.Errorf("read config YAML: %w", err)
		}
		root, err := common.DocumentRoot(rootDoc)
		if err != nil {
			return err
		}

		for _, item := range items {
			idx := strings.LastIndex(item, "=")
			if idx <= 0 {
				return fmt.Errorf("invalid syntax %q (want key=val)", item)
			}
			pathStr, val := item[:idx], item[idx+1:]
			if pathStr == "version" {
				return fmt.Errorf("version is managed by `mission config migrate`")
			}
			if _, err := common.WriteToPath(root, strings.Split(pathStr, "."), val); err != nil {
				return fmt.Errorf("setting value %s failed: %w", item, err)
			}
			logger.Info("Set %s = %s", pathStr, val)
		}

		if err := common.WriteYAML(cfgPath, rootDoc); err != nil {
			return fmt.Errorf("write config YAML: %w", err)
		}
		if _, err := ValidateConfig(cfgPath); err != nil {
			if restoreErr := restoreBackup(cfgPath, backup); restoreErr != nil {
				return restoreErr
			}
			return fmt.Errorf("change rejected: %w", err)
		}
		return nil
	},
}

var editCommand = &cli.Command{
	Name:  "edit",
	Usage: "Open mission.yaml in a text editor",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		cfgPath, err := common.ProjectConfigPath()
		if err != nil {
			return err
		}
		return EditConfig(cCtx, cfgPath)
	},
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Upgrade mission.yaml to the latest version",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		cfgPath, err := common.ProjectConfigPath()
		if err != nil {
			return err
		}
		from, err := migration.MigrateFile(logger, cfgPath, configs.LatestVersion, configs.MigrationChain)
		if errors.Is(err, migration.ErrAlreadyUpToDate) {
			logger.Info("mission.yaml is already at version %s", from)
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("Migrated mission.yaml from %s to %s", from, configs.LatestVersion)
		return nil
	},
}

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Create mission.yaml, .env.example and .gitignore in the current directory",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "Project name, defaults to the directory name",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite an existing mission.yaml",
		},
	}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		cfgPath := filepath.Join(dir, common.ProjectConfigFile)
		if _, err := os.Stat(cfgPath); err == nil && !cCtx.Bool("force") {
			return fmt.Errorf("%s already exists, pass --force to overwrite", common.ProjectConfigFile)
		}

		name := cCtx.String("name")
		if name == "" {
			name = filepath.Base(dir)
		}
		if err := os.WriteFile(cfgPath, projectconfig.DefaultMissionYaml(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", common.ProjectConfigFile, err)
		}

		telemetryEnabled := false
		if pref, err := common.GetGlobalTelemetryPreference(); err == nil && pref != nil {
			telemetryEnabled = *pref
		}
		if err := common.SaveProjectIdAndTelemetryToggle(cfgPath, uuid.New().String(), telemetryEnabled); err != nil {
			return err
		}
		rootDoc, err := common.LoadYAML(cfgPath)
		if err != nil {
			return err
		}
		root, err := common.DocumentRoot(rootDoc)
		if err != nil {
			return err
		}
		if _, err := common.WriteToPath(root, []string{"project", "name"}, name); err != nil {
			return err
		}
		if err := common.WriteYAML(cfgPath, rootDoc); err != nil {
			return err
		}

		if err := writeIfMissing(filepath.Join(dir, ".env.example"), projectconfig.EnvExample); err != nil {
			return err
		}
		if err := writeIfMissing(filepath.Join(dir, ".gitignore"), projectconfig.GitIgnore); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Join(dir, common.DefaultDeploymentsDir), 0o755); err != nil {
			return err
		}

		logger.Info("Initialized project %s", name)
		logger.Info("Copy .env.example to .env and fill in PRIVATE_KEY and ACCOUNT_ID to send transactions")
		return nil
	},
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
