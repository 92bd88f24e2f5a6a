package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/ChengaDev/passport-saml-metadata/metadata"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configOutputPath string

var configureCmd = &cobra.Command{
	Use:   "configure [metadata-file]",
	Short: "Generate a passport-saml configuration from a metadata document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := loadReader(args)
		if err != nil {
			return err
		}
		ssoConfig, err := CreateSsoConfig(reader)
		if err != nil {
			return err
		}
		if configOutputPath == "" {
			fmt.Println(ssoConfig)
			return nil
		}
		if err := ioutil.WriteFile(configOutputPath, []byte(ssoConfig), 0644); err != nil {
			return err
		}
		logrus.Infof("SSO configuration written to %s", configOutputPath)
		return nil
	},
}

func init() {
	configureCmd.Flags().StringVarP(&configOutputPath, "output", "o", "", "write the configuration to a file instead of stdout")
	rootCmd.AddCommand(configureCmd)
}

// CreateSsoConfig renders the service-provider side configuration consumed
// by passport-saml, with the entry point, issuer and certificate taken from
// the metadata document.
func CreateSsoConfig(r *metadata.Reader) (string, error) {
	template := `module.exports = {
   samlEmailField: "nameID",
   entryPoint: "%s",
   logoutUrl: "%s",
   issuer: "%s",
   identifierFormat: "%s",
   cert: "%s"
}`
	sp := r.ServiceProviderConfig()
	if sp.EntryPoint == "" {
		return "", errors.New("metadata document does not describe a single sign-on endpoint")
	}
	cert := ""
	if len(sp.SigningCerts) > 0 {
		cert = sp.SigningCerts[0]
	}
	return fmt.Sprintf(template, sp.EntryPoint, sp.LogoutURL, sp.Issuer, sp.IdentifierFormat, cert), nil
}
