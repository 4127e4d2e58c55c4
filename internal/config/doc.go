// Package config loads and validates savet-portal configuration from YAML.
//
// Configuration files support ${VAR_NAME} environment variable expansion
// and Go duration strings for time-valued fields. The config file location
// is resolved by the binaries (COUNCIL_CONFIG env var, then the XDG config
// directory); this package only deals with parsing and validation.
package config
