package cmd

import (
	"fmt"
	"os"

	"github.com/ChengaDev/passport-saml-metadata/metadata"
	"github.com/spf13/cobra"

	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "passport-saml-metadata",
	Short: "Extract single sign-on configuration from SAML 2.0 metadata",
	Long: `Reads a SAML 2.0 metadata document, either from a local file or from
the identity provider's metadata URL, and extracts the configuration a
relying application needs for single sign-on: entity ID, NameID format,
SSO and logout endpoints, certificates, and the claim schema.

Fetched documents can be backed up to a file directory or a postgres
table so sign-on keeps working while the identity provider is down.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file config.yml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("METADATA_URL", "")
	viper.SetDefault("AUTHN_REQUEST_BINDING", metadata.DefaultAuthnRequestBinding)
	viper.SetDefault("FETCH_TIMEOUT_IN_SECONDS", 2)
	viper.SetDefault("BACKUP_STORE", "file")
	viper.SetDefault("BACKUP_STORE_PATH", ".saml-metadata")
	viper.SetDefault("POSTGRES_HOST", "")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER_NAME", "")
	viper.SetDefault("POSTGRES_DATABASE_NAME", "")
	viper.SetDefault("POSTGRES_DATABASE_PASSWORD", "")
	viper.SetDefault("POSTGRES_PROMPT_PASSWORD", false)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
	}
}
