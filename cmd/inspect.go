package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ChengaDev/passport-saml-metadata/metadata"
	"github.com/ChengaDev/passport-saml-metadata/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh/terminal"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [metadata-file]",
	Short: "Print the configuration extracted from a metadata document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := loadReader(args)
		if err != nil {
			return err
		}
		printReader(reader)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func readerConfig() metadata.Config {
	return metadata.Config{
		AuthnRequestBinding: viper.GetString("AUTHN_REQUEST_BINDING"),
	}
}

// loadReader builds a metadata reader from the file argument when given,
// otherwise by fetching METADATA_URL with the configured backup store.
func loadReader(args []string) (*metadata.Reader, error) {
	if len(args) > 0 {
		raw, err := ioutil.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		return metadata.New(string(raw), readerConfig())
	}

	url := viper.GetString("METADATA_URL")
	if url == "" {
		return nil, errors.New("pass a metadata file or set METADATA_URL")
	}
	backup, err := backupStore()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(viper.GetInt("FETCH_TIMEOUT_IN_SECONDS")) * time.Second
	return metadata.Fetch(context.Background(), metadata.FetchOptions{
		URL:     url,
		Timeout: timeout,
		Backup:  backup,
		Config:  readerConfig(),
	})
}

func backupStore() (metadata.BackupStore, error) {
	switch viper.GetString("BACKUP_STORE") {
	case "postgres":
		if viper.GetBool("POSTGRES_PROMPT_PASSWORD") && viper.GetString("POSTGRES_DATABASE_PASSWORD") == "" {
			password, err := readStorePassword()
			if err != nil {
				return nil, err
			}
			viper.Set("POSTGRES_DATABASE_PASSWORD", password)
		}
		pg, err := store.NewPostgresStore()
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(); err != nil {
			return nil, err
		}
		return pg, nil
	case "file":
		return store.NewFileStore(viper.GetString("BACKUP_STORE_PATH"))
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown backup store: %s", viper.GetString("BACKUP_STORE"))
}

func readStorePassword() (string, error) {
	fmt.Printf("Enter password for '%s' and press Enter: ",
		viper.GetString("POSTGRES_USER_NAME"))
	bytePassword, err := terminal.ReadPassword(syscall.Stdin)
	if err != nil {
		return "", err
	}
	fmt.Println() // do not remove it
	password := strings.TrimSpace(string(bytePassword))
	if len(password) == 0 {
		return "", errors.New("please enter a valid password")
	}
	return password, nil
}

func printReader(r *metadata.Reader) {
	sp := r.ServiceProviderConfig()
	fmt.Printf("entityID:          %s\n", sp.Issuer)
	fmt.Printf("identifierFormat:  %s\n", sp.IdentifierFormat)
	fmt.Printf("ssoUrl:            %s\n", sp.EntryPoint)
	fmt.Printf("logoutUrl:         %s\n", sp.LogoutURL)

	for i, cert := range sp.SigningCerts {
		fmt.Printf("signingCert[%d]:    %s\n", i, abbreviate(cert))
	}
	encryptionCerts, _ := r.EncryptionCerts(true)
	for i, cert := range encryptionCerts {
		fmt.Printf("encryptionCert[%d]: %s\n", i, abbreviate(cert))
	}

	schema, _ := r.ClaimSchema()
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		claim := schema[name]
		fmt.Printf("claim %s: %s (%s)\n", claim.Name, claim.Description, claim.CamelCase)
	}
}

func abbreviate(cert string) string {
	if len(cert) <= 40 {
		return cert
	}
	return cert[:40] + "..."
}
