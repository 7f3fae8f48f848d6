package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tasktag/tasktag/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasktag",
	Short: "tasktag manages tagged task graphs from the command line.",
	Long: `tasktag keeps work items in named, isolated partitions ("tags") where
tasks form a dependency graph. It validates and repairs graph integrity,
reorders task ids within a tag, and moves tasks across tags while
reconciling the dependency edges that span them.`,
	// No Run: a bare invocation prints help, unknown subcommands error out.
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.tasktag/.tasktag.yaml or $HOME/.tasktag.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetTaskFilePath returns the full path to the tag store file.
func GetTaskFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Project.TasksDir, config.Data.File)
}

// CurrentTag returns the tag commands operate on when no --tag flag is
// given.
func CurrentTag() string {
	return GetConfig().Project.CurrentTag
}

// GetStore initializes and returns the tag store.
func GetStore() (store.TagStore, error) {
	s := store.NewFileTagStore(afero.NewOsFs())
	config := GetConfig()

	err := s.Initialize(map[string]string{
		"dataFile":       GetTaskFilePath(),
		"dataFileFormat": config.Data.Format,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
