// Package config provides configuration management for wbdeps.
//
// Configuration is read from a single directory containing config.yaml. The
// default directory is ~/.config/wbdeps; commands accept --config-path to use
// another one. A missing file means defaults.
//
// # File Format
//
//	schema:
//	  nameField: name
//	  expressionField: query
//	  dependencyField: criteriaData
//	  addressFields: [url, path]
//	policy:
//	  addMissing: true
//	  removeExtra: false
//	  dropDuplicates: true
//	  canonicalize: true
//	canonicalAddresses:
//	  - variable: FunctionApp
//	    template: /subscriptions/{Subscription}/resourceGroups/{ResourceGroup}/providers/Microsoft.Web/sites/{FunctionAppName}
//	ignoreVariables: [TimeRange]
//	output:
//	  format: table
//
// Fields left out keep their default. Lists replace the default list.
//
// # Errors
//
// LoadConfig returns ConfigurationError for unreadable, malformed or invalid
// files. The CLI maps it to its own exit code.
package config
