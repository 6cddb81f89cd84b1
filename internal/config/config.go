// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional .env file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// BaseURL is the storefront backend address used when the runtime host
	// is not in the local development set.
	BaseURL string

	// LocalURL is the backend address used during local development.
	LocalURL string

	// StateFile is the path to the persisted client state (cart identity,
	// tokens, favorites).
	StateFile string

	// Config is the path to the Config file.
	Config string
}

// defaultBaseURL is the fixed internal service address used outside of
// local development.
const defaultBaseURL = "http://product-service.internal:8004"

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.BaseURL, "url", defaultBaseURL, "storefront backend base URL")
	flag.StringVar(&options.LocalURL, "local-url", "http://localhost:8004", "backend base URL for local development")
	flag.StringVar(&options.StateFile, "state", "shopfront.json", "path to persisted client state")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	// A .env file is optional; ignore the error when it is absent.
	_ = godotenv.Load()

	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if baseURL := os.Getenv("SHOPFRONT_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}
	if stateFile := os.Getenv("SHOPFRONT_STATE"); stateFile != "" {
		options.StateFile = stateFile
	}

	return options
}
