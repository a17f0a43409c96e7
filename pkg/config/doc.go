// Package config provides configuration management for the interviewer
// relay and chat client.
//
// Configuration comes from an optional YAML file plus environment variables.
// The relay is usually run with environment variables only, the same way
// the Azure OpenAI SDKs are configured:
//
//	AZURE_OPENAI_ENDPOINT=https://my-resource.openai.azure.com \
//	AZURE_OPENAI_API_KEY=... \
//	interviewer serve
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")      // file + defaults
//	cfg, err := config.LoadConfigWithEnvOverrides("") // defaults + env only
//
// # Environment Variable Overrides
//
// The provider section honours the Azure SDK variable names:
//
//   - AZURE_OPENAI_ENDPOINT overrides provider.endpoint
//   - AZURE_OPENAI_API_KEY overrides provider.api_key
//   - AZURE_OPENAI_API_VERSION overrides provider.api_version
//   - AZURE_OPENAI_DEPLOYMENT overrides provider.deployment
//
// Everything else follows INTERVIEWER_SECTION_FIELD, for example
// INTERVIEWER_SERVER_LISTEN_ADDRESS or INTERVIEWER_TELEMETRY_LOGGING_LEVEL.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and invokes a
// callback with the freshly loaded Config after a debounce interval. Only
// settings that are safe to swap at runtime are applied by the serve
// command: the log level and the relay persona.
//
// # Singleton Pattern
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer passing explicit Config values.
package config
