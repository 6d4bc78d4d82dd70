package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/matteomazza91/nearver"
	log "github.com/sirupsen/logrus"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Repo        string `short:"r" help:"Repository path (default: current directory)"`
	Field       string `short:"f" default:"all" enum:"all,any,normal,any-distance,normal-distance" help:"Print a single result field instead of the full summary"`
	JSON        bool   `short:"j" help:"Output as JSON"`
	Debug       bool   `help:"Enable debug logging on stderr"`
	ShowVersion bool   `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("nearver"),
		kong.Description("Locate the nearest semantic version tags relative to HEAD"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}

	return c.locate()
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "nearver",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("nearver version %s\n", Version)
	return nil
}

func (c *CLI) locate() error {
	repoPath := c.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := nearver.OpenRepository(repoPath)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	result, err := nearver.Locate(nearver.Options{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("locating nearest versions: %w", err)
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Println(getFieldOutput(result, c.Field))
	return nil
}

func getFieldOutput(result *nearver.Result, field string) string {
	switch field {
	case "any":
		return result.Any.String()
	case "normal":
		return result.Normal.String()
	case "any-distance":
		return strconv.Itoa(result.AnyDistance)
	case "normal-distance":
		return strconv.Itoa(result.NormalDistance)
	default:
		return fmt.Sprintf("any: %s (distance %d)\nnormal: %s (distance %d)",
			result.Any, result.AnyDistance, result.Normal, result.NormalDistance)
	}
}
