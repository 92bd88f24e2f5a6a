package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	errorWrapper "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// PostgresStore keeps metadata documents in a saml_metadata table so every
// instance behind a load balancer shares the same backup copy.
type PostgresStore struct {
	db *sql.DB
}

//connect with database server and return a store struct
func NewPostgresStore() (*PostgresStore, error) {
	if viper.GetString("POSTGRES_HOST") == "" {
		logrus.Fatal("the value of POSTGRES_HOST cannot be empty in config.yml file")
	}
	if viper.GetString("POSTGRES_PORT") == "" {
		logrus.Fatal("the value of POSTGRES_PORT cannot be empty in config.yml file")
	}
	if viper.GetString("POSTGRES_USER_NAME") == "" {
		logrus.Fatal("the value of POSTGRES_USER_NAME cannot be empty in config.yml file")
	}
	if viper.GetString("POSTGRES_DATABASE_NAME") == "" {
		logrus.Fatal("the value of POSTGRES_DATABASE_NAME cannot be empty in config.yml file")
	}
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s dbname=%s",
		viper.GetString("POSTGRES_HOST"), viper.GetInt("POSTGRES_PORT"),
		viper.GetString("POSTGRES_USER_NAME"), viper.GetString("POSTGRES_DATABASE_NAME"))
	if viper.GetString("POSTGRES_DATABASE_PASSWORD") != "" {
		psqlInfo = fmt.Sprintf("%s password=%s", psqlInfo, viper.GetString("POSTGRES_DATABASE_PASSWORD"))
	}
	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, errorWrapper.Wrap(err, "failed in connecting with database")
	}
	return &PostgresStore{db: db}, nil
}

//ping to database server,
func (s *PostgresStore) Ping() (bool, error) {
	err := s.db.Ping()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *PostgresStore) EnsureSchema() error {
	sqlStatement := `
CREATE TABLE IF NOT EXISTS saml_metadata (
	url text PRIMARY KEY,
	document text NOT NULL,
	fetched_at timestamptz NOT NULL DEFAULT now()
);`
	_, err := s.db.Exec(sqlStatement)
	if err != nil {
		return errorWrapper.Wrap(err, "failed in creating saml_metadata table")
	}
	return nil
}

func (s *PostgresStore) Get(url string) (string, error) {
	document := ""
	sqlStatement := `SELECT document FROM saml_metadata WHERE url=$1;`
	row := s.db.QueryRow(sqlStatement, url)
	switch err := row.Scan(&document); err {
	case sql.ErrNoRows:
		return "", NoDocumentFound
	case nil:
		return document, nil
	default:
		return "", err
	}
}

func (s *PostgresStore) Set(url, document string) error {
	sqlStatement := `
INSERT INTO saml_metadata (url, document, fetched_at)
VALUES ($1, $2, now())
ON CONFLICT (url) DO UPDATE SET document = EXCLUDED.document, fetched_at = now();`
	_, err := s.db.Exec(sqlStatement, url, document)
	if err != nil {
		return errorWrapper.Wrap(err, "failed in saving metadata document")
	}
	return nil
}
