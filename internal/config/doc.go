// Package config provides configuration management for the mcpmerge CLI.
//
// This package loads the tool's own settings. It is distinct from the JSON
// files mcpmerge edits, which are never read through Viper.
//
// # Configuration File
//
// The file is $XDG_CONFIG_HOME/mcpmerge/config.yaml, or the path given to
// [Load]. The current directory is not searched, so a target named
// config.json next to the operator is never mistaken for it. Every key can be overridden from the
// environment with the MCPMERGE_ prefix (dots become underscores):
//
//	version: 1
//	file_mode: "0644"        # permissions for newly created target files
//	query:
//	  url: http://localhost:3000/query   # also read from FCM_RAG_URL
//	  top_k: 5
//	  timeout: 30s
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// A missing file is not an error when no explicit path is given; the
// defaults from [Default] apply. Loaded configurations are validated with
// [Validate] and failures are marked with apperrors.ErrInvalidConfig.
package config
